package inventory

import (
	"context"

	"refurbhq/internal/core/id"
)

// Repository defines persistence operations for inventory rollups and
// daily production rows.
type Repository interface {
	Create(ctx context.Context, inv *Inventory) error

	GetByID(ctx context.Context, inventoryID id.ID) (*Inventory, error)
	GetByProduct(ctx context.Context, productID id.ID) (*Inventory, error)

	// GetForUpdate retrieves the rollup with a row lock so concurrent
	// mutations for the same product serialize.
	GetForUpdate(ctx context.Context, inventoryID id.ID) (*Inventory, error)

	// Update persists the rollup with an optimistic version check and
	// reports a concurrent-modification error on mismatch.
	Update(ctx context.Context, inv *Inventory) error

	List(ctx context.Context, limit, offset int) ([]Inventory, error)

	CreateDailyProduction(ctx context.Context, d *DailyProduction) error
	UpdateDailyProduction(ctx context.Context, d *DailyProduction) error
	GetDailyProduction(ctx context.Context, entryID id.ID) (*DailyProduction, error)
	ListDailyProduction(ctx context.Context, batchID id.ID) ([]DailyProduction, error)
}
