// Package voucher provides sequential document numbering. A series is a
// named counter (e.g. "payment" with prefix PAY) whose numbers strictly
// increase by one per committed allocation. Allocation joins the
// caller's transaction, so a rolled-back operation releases its number
// and the sequence stays gap-free.
package voucher

import (
	"context"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/entity"
)

// Series is a named voucher counter.
type Series struct {
	entity.BaseEntity

	// Name identifies the series, unique ("payment", "invoice")
	Name string `db:"name" json:"name"`

	// Prefix is prepended to every issued code
	Prefix string `db:"prefix" json:"prefix"`

	// StartFrom is the first number the series will issue
	StartFrom int64 `db:"start_from" json:"startFrom"`

	// CurrentNumber is the last issued number. Mutated only by the
	// storage layer's atomic increment.
	CurrentNumber int64 `db:"current_number" json:"currentNumber"`
}

// NewSeries creates a series that will issue numbers from startFrom.
func NewSeries(name, prefix string, startFrom int64) *Series {
	if startFrom < 1 {
		startFrom = 1
	}
	return &Series{
		BaseEntity:    entity.NewBaseEntity(),
		Name:          name,
		Prefix:        prefix,
		StartFrom:     startFrom,
		CurrentNumber: startFrom - 1,
	}
}

// Validate implements entity.Validatable.
func (s *Series) Validate(ctx context.Context) error {
	if s.Name == "" {
		return apperror.NewValidation("series name is required").
			WithDetail("field", "name")
	}
	if s.Prefix == "" {
		return apperror.NewValidation("series prefix is required").
			WithDetail("field", "prefix")
	}
	return nil
}
