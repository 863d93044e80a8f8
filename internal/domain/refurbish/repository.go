package refurbish

import (
	"context"

	"refurbhq/internal/core/id"
)

// Repository defines persistence operations for batches and usages.
type Repository interface {
	CreateBatch(ctx context.Context, b *Batch) error
	GetBatch(ctx context.Context, batchID id.ID) (*Batch, error)

	// FindBySerial retrieves a batch by its unique serial number.
	FindBySerial(ctx context.Context, serialNumber string) (*Batch, error)

	ListBatches(ctx context.Context, limit, offset int) ([]Batch, error)

	// CreateUsage inserts a usage fact. No update/delete counterpart
	// exists: usages are immutable once persisted.
	CreateUsage(ctx context.Context, u *Usage) error

	ListUsages(ctx context.Context, batchID id.ID) ([]Usage, error)
}
