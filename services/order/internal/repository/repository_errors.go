package repository

import "errors"

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrAlreadyFinalized means the order already left AWAITING_PAYMENT.
	// Webhook redeliveries hit this guard instead of flipping the status twice.
	ErrAlreadyFinalized = errors.New("order already finalized")
)
