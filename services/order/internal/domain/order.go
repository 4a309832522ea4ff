package domain

import (
	"time"

	"github.com/google/uuid"
	generalDomain "github.com/rohit1039/ultimate-full-stack-E-commerce-app-sub000/pkg/domain"
)

type OrderStatus string

const (
	StatusPending         OrderStatus = "PENDING"
	StatusAwaitingPayment OrderStatus = "AWAITING_PAYMENT"
	StatusConfirmed       OrderStatus = "CONFIRMED"
	StatusPaymentFailed   OrderStatus = "PAYMENT_FAILED"
	// StatusCancelling marks an expired order whose reservation is not
	// released yet; the reaper keeps retrying it until the release lands.
	StatusCancelling OrderStatus = "CANCELLING"
	StatusCancelled  OrderStatus = "CANCELLED"
)

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	ZipCode string `json:"zip_code"`
}

type Order struct {
	ID          uuid.UUID                 `json:"id"`
	Username    string                    `json:"username"`
	Status      OrderStatus               `json:"status"`
	TotalAmount int64                     `json:"total_amount"`
	PaymentID   *string                   `json:"payment_id,omitempty"`
	Address     Address                   `json:"address"`
	Items       []generalDomain.OrderItem `json:"items"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}
