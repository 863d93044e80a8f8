package inventory

import (
	"context"
	"fmt"
	"time"

	"refurbhq/internal/core/id"
	"refurbhq/internal/core/tx"
	"refurbhq/pkg/logger"
)

// Service maintains inventory rollups and daily production rows.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new inventory service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// Open creates the rollup row for a product with its opening stock.
func (s *Service) Open(ctx context.Context, productID id.ID, openingStock int64) (*Inventory, error) {
	inv := NewInventory(productID, openingStock)
	if err := inv.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// UpdateStock sets the rollup counters and recomputes current_stock as
// opening + in - out before persisting. Idempotent: re-running with the
// same counters leaves the row unchanged apart from its version.
func (s *Service) UpdateStock(ctx context.Context, inventoryID id.ID, openingStock, stockIn, stockOut int64) (*Inventory, error) {
	var result *Inventory

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.repo.GetForUpdate(ctx, inventoryID)
		if err != nil {
			return err
		}

		inv.OpeningStock = openingStock
		inv.StockIn = stockIn
		inv.StockOut = stockOut
		inv.Recompute()
		inv.Touch()

		if err := s.repo.Update(ctx, inv); err != nil {
			return fmt.Errorf("update inventory: %w", err)
		}

		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "inventory updated",
		"inventory_id", inventoryID,
		"current_stock", result.CurrentStock,
	)

	return result, nil
}

// AddMovement accumulates a stock movement on the rollup and recomputes
// current_stock in the same transaction. Used by sales and purchasing to
// feed the rollup when units move.
func (s *Service) AddMovement(ctx context.Context, productID id.ID, in, out int64) (*Inventory, error) {
	var result *Inventory

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.repo.GetByProduct(ctx, productID)
		if err != nil {
			return err
		}

		locked, err := s.repo.GetForUpdate(ctx, inv.ID)
		if err != nil {
			return err
		}

		locked.StockIn += in
		locked.StockOut += out
		locked.Recompute()
		locked.Touch()

		if err := s.repo.Update(ctx, locked); err != nil {
			return fmt.Errorf("update inventory: %w", err)
		}

		result = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetByProduct returns the product's rollup row.
func (s *Service) GetByProduct(ctx context.Context, productID id.ID) (*Inventory, error) {
	return s.repo.GetByProduct(ctx, productID)
}

// List returns a page of rollups.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Inventory, error) {
	return s.repo.List(ctx, limit, offset)
}

// RecordDailyProduction persists a daily movement row, recomputing its
// current_stock from stock_in - stock_out regardless of prior state.
func (s *Service) RecordDailyProduction(ctx context.Context, d *DailyProduction) error {
	if err := d.Validate(ctx); err != nil {
		return err
	}

	d.Recompute()

	if id.IsNil(d.ID) {
		d.ID = id.New()
		if d.Date.IsZero() {
			d.Date = time.Now().UTC()
		}
		d.CreatedAt = time.Now().UTC()
		return s.repo.CreateDailyProduction(ctx, d)
	}
	return s.repo.UpdateDailyProduction(ctx, d)
}

// ListDailyProduction returns the batch's daily rows.
func (s *Service) ListDailyProduction(ctx context.Context, batchID id.ID) ([]DailyProduction, error) {
	return s.repo.ListDailyProduction(ctx, batchID)
}
