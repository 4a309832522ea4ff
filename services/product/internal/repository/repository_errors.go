package repository

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSizeNotFound    = errors.New("size not found for product")
	ErrOutOfStock      = errors.New("not enough free stock")
	// ErrInsufficientReservation means a confirm asked for more units than
	// were reserved. The ledger never clamps, the caller has a consistency
	// bug and must see it.
	ErrInsufficientReservation = errors.New("insufficient reserved stock")
)
