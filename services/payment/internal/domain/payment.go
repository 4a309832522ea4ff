package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Payment is keyed by the provider's payment-link id, which is what webhook
// deliveries reference.
type Payment struct {
	PaymentID   string        `json:"payment_id"`
	OrderID     uuid.UUID     `json:"order_id"`
	Status      PaymentStatus `json:"status"`
	Method      string        `json:"method"`
	TotalAmount int64         `json:"total_amount"`
	// StockSettled records whether the reserved units behind this payment
	// were confirmed or released yet.
	StockSettled bool `json:"stock_settled"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
