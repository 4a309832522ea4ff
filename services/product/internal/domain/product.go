package domain

import "time"

type Size struct {
	Name             string `json:"name"`
	Quantity         int64  `json:"quantity"`
	ReservedQuantity int64  `json:"reserved_quantity"`
}

type Product struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand"`
	Color        string    `json:"color"`
	Price        int64     `json:"price"`
	ProductCount int64     `json:"product_count"`
	Enabled      bool      `json:"enabled"`
	Sizes        []Size    `json:"sizes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StockItem is one line of a reserve, release or confirm request.
type StockItem struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Size      string `json:"size" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
}
