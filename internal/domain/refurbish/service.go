package refurbish

import (
	"context"
	"fmt"
	"time"

	"refurbhq/internal/core/apperror"
	appctx "refurbhq/internal/core/context"
	"refurbhq/internal/core/id"
	"refurbhq/internal/core/tx"
	"refurbhq/internal/domain/audit"
	"refurbhq/internal/domain/catalogs/component"
	"refurbhq/pkg/logger"
)

// Service manages refurbishing batches and their component usage.
type Service struct {
	repo       Repository
	components component.Repository
	txManager  tx.Manager
	auditor    audit.Recorder
}

// NewService creates a new refurbish service.
func NewService(repo Repository, components component.Repository, txManager tx.Manager, auditor audit.Recorder) *Service {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &Service{
		repo:       repo,
		components: components,
		txManager:  txManager,
		auditor:    auditor,
	}
}

// CreateBatch registers a production run. Serial numbers are unique
// across all batches.
func (s *Service) CreateBatch(ctx context.Context, b *Batch) error {
	if err := b.Validate(ctx); err != nil {
		return err
	}

	existing, err := s.repo.FindBySerial(ctx, b.SerialNumber)
	if err != nil && !apperror.IsNotFound(err) {
		return err
	}
	if existing != nil {
		return apperror.NewDuplicate("batch", "serialNumber", b.SerialNumber)
	}

	if userID := appctx.GetUserID(ctx); userID != "" {
		if uid, err := id.Parse(userID); err == nil {
			b.CreatedBy = &uid
		}
	}

	if err := s.repo.CreateBatch(ctx, b); err != nil {
		return fmt.Errorf("create batch: %w", err)
	}

	logger.Info(ctx, "batch created",
		"batch_id", b.ID,
		"serial_number", b.SerialNumber,
	)
	return nil
}

// GetBatch returns a batch by id.
func (s *Service) GetBatch(ctx context.Context, batchID id.ID) (*Batch, error) {
	return s.repo.GetBatch(ctx, batchID)
}

// ListBatches returns a page of batches.
func (s *Service) ListBatches(ctx context.Context, limit, offset int) ([]Batch, error) {
	return s.repo.ListBatches(ctx, limit, offset)
}

// RecordUsage consumes component stock for a batch. The component row is
// locked, the available quantity checked, the counter decremented and
// the usage fact written, all in one transaction. A failed check leaves
// both the counter and the usage ledger untouched.
func (s *Service) RecordUsage(ctx context.Context, batchID, componentID id.ID, qty int64) (*Usage, error) {
	if qty <= 0 {
		return nil, apperror.NewValidation("quantity used must be positive").
			WithDetail("field", "quantityUsed")
	}

	var usage *Usage

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetBatch(ctx, batchID); err != nil {
			return err
		}

		comp, err := s.components.GetForUpdate(ctx, componentID)
		if err != nil {
			return err
		}

		if comp.StockQuantity < qty {
			return apperror.NewInsufficientStock(
				componentID.String(), comp.Name, qty, comp.StockQuantity)
		}

		if err := s.components.DecrementStock(ctx, componentID, qty); err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}

		usage = &Usage{
			ID:           id.New(),
			BatchID:      batchID,
			ComponentID:  componentID,
			QuantityUsed: qty,
			CreatedAt:    time.Now().UTC(),
		}
		if err := s.repo.CreateUsage(ctx, usage); err != nil {
			return fmt.Errorf("create usage: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Record{
		EntityType: "component",
		EntityID:   componentID,
		Action:     audit.ActionUsage,
		UserID:     appctx.GetUserID(ctx),
		Changes: map[string]any{
			"batchId":      batchID,
			"quantityUsed": qty,
		},
	})

	logger.Info(ctx, "component usage recorded",
		"batch_id", batchID,
		"component_id", componentID,
		"quantity_used", qty,
	)

	return usage, nil
}

// ListUsages returns the usage facts for a batch.
func (s *Service) ListUsages(ctx context.Context, batchID id.ID) ([]Usage, error) {
	return s.repo.ListUsages(ctx, batchID)
}
