// Package component provides the Component catalog. Components are the
// spare parts (RAM, SSD, panels) consumed when refurbishing laptops.
// The stock_quantity counter is the leaf of the stock ledger: it is only
// ever mutated by recorded usage and received purchases.
package component

import (
	"context"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/entity"
	"refurbhq/internal/core/types"
)

// Component represents a refurbishing spare part with its stock counter.
type Component struct {
	entity.BaseEntity

	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`

	// Unit of measure, pieces unless stated otherwise
	Unit string `db:"unit" json:"unit"`

	PurchasePrice types.Money `db:"purchase_price" json:"purchasePrice"`

	// StockQuantity is the number of units on hand. Never negative;
	// decremented only through usage records.
	StockQuantity int64 `db:"stock_quantity" json:"stockQuantity"`
}

// NewComponent creates a component with sane defaults.
func NewComponent(name string, purchasePrice types.Money) *Component {
	return &Component{
		BaseEntity:    entity.NewBaseEntity(),
		Name:          name,
		Unit:          "Pieces",
		PurchasePrice: purchasePrice,
	}
}

// Validate implements entity.Validatable.
func (c *Component) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if c.StockQuantity < 0 {
		return apperror.NewValidation("stock quantity cannot be negative").
			WithDetail("field", "stockQuantity")
	}
	if c.PurchasePrice.IsNegative() {
		return apperror.NewValidation("purchase price cannot be negative").
			WithDetail("field", "purchasePrice")
	}
	return nil
}
