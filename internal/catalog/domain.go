package catalog

import (
	"time"

	"github.com/sabaipos/sabaipos/internal/money"
)

// Product represents a catalog entry.
type Product struct {
	ID           int64       `json:"id"`
	Barcode      string      `json:"barcode"`
	Title        string      `json:"title"`
	Price        money.Money `json:"price"`
	Cost         money.Money `json:"cost"`
	Quantity     int         `json:"quantity"`
	Unit         string      `json:"unit"`
	Category     string      `json:"category"`
	ReorderPoint int         `json:"reorder_point"`
	Supplier     string      `json:"supplier"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// NeedsRestock reports whether on-hand quantity has fallen to the reorder point.
func (p Product) NeedsRestock() bool {
	return p.Quantity <= p.ReorderPoint
}

// ProductInput carries fields for create and update operations.
type ProductInput struct {
	Barcode      string      `json:"barcode"`
	Title        string      `json:"title"`
	Price        money.Money `json:"price"`
	Cost         money.Money `json:"cost"`
	Quantity     int         `json:"quantity"`
	Unit         string      `json:"unit"`
	Category     string      `json:"category"`
	ReorderPoint int         `json:"reorder_point"`
	Supplier     string      `json:"supplier"`
}

// ListFilter narrows List results.
type ListFilter struct {
	Search   string
	Category string
	Limit    int
	Offset   int
}
