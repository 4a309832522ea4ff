package domain

import "time"

// OrderItem is the line-item shape shared between the order service's
// outbox events and their consumers.
type OrderItem struct {
	ProductID int64  `json:"product_id" db:"product_id"`
	Size      string `json:"size" db:"size"`
	Quantity  int32  `json:"quantity" db:"quantity"`
	Price     int64  `json:"price" db:"price"`
}

type OrderPlacedEvent struct {
	OrderID     string      `json:"order_id"`
	Username    string      `json:"username"`
	TotalAmount int64       `json:"total_amount"`
	Items       []OrderItem `json:"items"`
	PlacedAt    time.Time   `json:"placed_at"`
}

type OrderConfirmedEvent struct {
	OrderID       string    `json:"order_id"`
	Username      string    `json:"username"`
	PaymentID     string    `json:"payment_id"`
	PaymentMethod string    `json:"payment_method"`
	TotalAmount   int64     `json:"total_amount"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

type OrderPaymentFailedEvent struct {
	OrderID   string    `json:"order_id"`
	Username  string    `json:"username"`
	PaymentID string    `json:"payment_id"`
	FailedAt  time.Time `json:"failed_at"`
}
