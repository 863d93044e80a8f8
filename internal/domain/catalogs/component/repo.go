package component

import (
	"context"

	"refurbhq/internal/core/id"
)

// Repository defines persistence operations for components.
type Repository interface {
	Create(ctx context.Context, c *Component) error
	Update(ctx context.Context, c *Component) error
	GetByID(ctx context.Context, componentID id.ID) (*Component, error)

	// GetForUpdate retrieves the component with a row lock. Stock
	// decrements must go through this inside a transaction.
	GetForUpdate(ctx context.Context, componentID id.ID) (*Component, error)

	// DecrementStock atomically subtracts qty from stock_quantity,
	// guarded so the counter can never go below zero.
	DecrementStock(ctx context.Context, componentID id.ID, qty int64) error

	// IncrementStock adds received quantity to stock_quantity.
	IncrementStock(ctx context.Context, componentID id.ID, qty int64) error

	List(ctx context.Context, limit, offset int) ([]Component, error)
}
