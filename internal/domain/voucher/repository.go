package voucher

import (
	"context"
)

// Repository defines persistence operations for voucher series.
type Repository interface {
	CreateSeries(ctx context.Context, s *Series) error
	GetByName(ctx context.Context, name string) (*Series, error)
	List(ctx context.Context) ([]Series, error)

	// NextNumber performs a single atomic increment-and-read on the
	// series counter and returns the allocated number with its prefix.
	// Implementations must never read-modify-write in separate
	// statements; concurrent callers get distinct numbers with no gaps.
	NextNumber(ctx context.Context, name string) (number int64, prefix string, err error)
}
