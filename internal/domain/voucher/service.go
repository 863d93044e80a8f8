package voucher

import (
	"context"
	"fmt"

	"refurbhq/internal/core/apperror"
	"refurbhq/pkg/logger"
)

// Service issues voucher codes from named series.
type Service struct {
	repo Repository
}

// NewService creates a new voucher service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateSeries registers a new counter series with a unique name.
func (s *Service) CreateSeries(ctx context.Context, series *Series) error {
	if err := series.Validate(ctx); err != nil {
		return err
	}

	existing, err := s.repo.GetByName(ctx, series.Name)
	if err != nil && !apperror.IsNotFound(err) {
		return err
	}
	if existing != nil {
		return apperror.NewDuplicate("voucher series", "name", series.Name)
	}

	if err := s.repo.CreateSeries(ctx, series); err != nil {
		return err
	}

	logger.Info(ctx, "voucher series created",
		"name", series.Name,
		"prefix", series.Prefix,
	)
	return nil
}

// Next allocates the next number in the series and returns the formatted
// code, e.g. "PAY0001". Allocation is a single atomic increment at the
// storage layer, so concurrent callers always receive distinct codes.
// The increment runs on the caller's transaction context: if the
// surrounding operation rolls back, the number is released with it.
func (s *Service) Next(ctx context.Context, seriesName string) (string, error) {
	num, prefix, err := s.repo.NextNumber(ctx, seriesName)
	if err != nil {
		return "", fmt.Errorf("allocate voucher number: %w", err)
	}

	return FormatCode(prefix, num), nil
}

// List returns all registered series.
func (s *Service) List(ctx context.Context) ([]Series, error) {
	return s.repo.List(ctx)
}

// FormatCode renders a voucher code as prefix plus the number padded to
// at least four digits.
func FormatCode(prefix string, number int64) string {
	return fmt.Sprintf("%s%04d", prefix, number)
}
