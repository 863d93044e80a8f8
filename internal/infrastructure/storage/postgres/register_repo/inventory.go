package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/domain/inventory"
	"refurbhq/internal/infrastructure/storage/postgres"
)

const (
	inventoryTable  = "reg_inventory"
	productionTable = "reg_daily_production"
)

// InventoryRepo implements inventory.Repository.
type InventoryRepo struct {
	txm         *postgres.TxManager
	builder     squirrel.StatementBuilderType
	columns     []string
	prodColumns []string
}

// NewInventoryRepo creates a new inventory repository.
func NewInventoryRepo(txm *postgres.TxManager) *InventoryRepo {
	return &InventoryRepo{
		txm:         txm,
		builder:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns:     postgres.ExtractDBColumns[inventory.Inventory](),
		prodColumns: postgres.ExtractDBColumns[inventory.DailyProduction](),
	}
}

// Create inserts a rollup row. One row per product.
func (r *InventoryRepo) Create(ctx context.Context, inv *inventory.Inventory) error {
	q := r.builder.Insert(inventoryTable).SetMap(postgres.StructToMap(inv))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("inventory", "product_id", inv.ProductID.String())
		}
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewNotFound("product", inv.ProductID.String())
		}
		return fmt.Errorf("insert inventory: %w", err)
	}
	return nil
}

// GetByID retrieves a rollup.
func (r *InventoryRepo) GetByID(ctx context.Context, inventoryID id.ID) (*inventory.Inventory, error) {
	return r.get(ctx, squirrel.Eq{"id": inventoryID}, inventoryID.String(), false)
}

// GetByProduct retrieves the rollup for a product.
func (r *InventoryRepo) GetByProduct(ctx context.Context, productID id.ID) (*inventory.Inventory, error) {
	return r.get(ctx, squirrel.Eq{"product_id": productID}, productID.String(), false)
}

// GetForUpdate retrieves a rollup with a row lock.
func (r *InventoryRepo) GetForUpdate(ctx context.Context, inventoryID id.ID) (*inventory.Inventory, error) {
	return r.get(ctx, squirrel.Eq{"id": inventoryID}, inventoryID.String(), true)
}

func (r *InventoryRepo) get(ctx context.Context, where squirrel.Eq, key string, forUpdate bool) (*inventory.Inventory, error) {
	q := r.builder.Select(r.columns...).
		From(inventoryTable).
		Where(where)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var inv inventory.Inventory
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &inv, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("inventory", key)
		}
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	return &inv, nil
}

// Update persists the rollup with an optimistic version check.
func (r *InventoryRepo) Update(ctx context.Context, inv *inventory.Inventory) error {
	values := postgres.StructToMap(inv)
	prevVersion := inv.Version - 1
	delete(values, "id")
	delete(values, "created_at")

	q := r.builder.Update(inventoryTable).
		SetMap(values).
		Where(squirrel.Eq{"id": inv.ID, "version": prevVersion})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update inventory: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("inventory", inv.ID)
	}
	return nil
}

// List returns a page of rollups in product insertion order.
func (r *InventoryRepo) List(ctx context.Context, limit, offset int) ([]inventory.Inventory, error) {
	q := r.builder.Select(r.columns...).
		From(inventoryTable).
		OrderBy("created_at", "id")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rollups []inventory.Inventory
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rollups, sql, args...); err != nil {
		return nil, fmt.Errorf("select inventory: %w", err)
	}
	return rollups, nil
}

// CreateDailyProduction inserts a per-day movement row.
func (r *InventoryRepo) CreateDailyProduction(ctx context.Context, d *inventory.DailyProduction) error {
	q := r.builder.Insert(productionTable).SetMap(postgres.StructToMap(d))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewNotFound("batch", d.BatchID.String())
		}
		return fmt.Errorf("insert daily production: %w", err)
	}
	return nil
}

// UpdateDailyProduction saves the row's movement counters.
func (r *InventoryRepo) UpdateDailyProduction(ctx context.Context, d *inventory.DailyProduction) error {
	values := postgres.StructToMap(d)
	delete(values, "id")
	delete(values, "created_at")

	q := r.builder.Update(productionTable).
		SetMap(values).
		Where(squirrel.Eq{"id": d.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update daily production: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("daily production", d.ID.String())
	}
	return nil
}

// GetDailyProduction retrieves a movement row.
func (r *InventoryRepo) GetDailyProduction(ctx context.Context, entryID id.ID) (*inventory.DailyProduction, error) {
	q := r.builder.Select(r.prodColumns...).
		From(productionTable).
		Where(squirrel.Eq{"id": entryID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var d inventory.DailyProduction
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &d, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("daily production", entryID.String())
		}
		return nil, fmt.Errorf("get daily production: %w", err)
	}
	return &d, nil
}

// ListDailyProduction returns a batch's movement rows by day.
func (r *InventoryRepo) ListDailyProduction(ctx context.Context, batchID id.ID) ([]inventory.DailyProduction, error) {
	q := r.builder.Select(r.prodColumns...).
		From(productionTable).
		Where(squirrel.Eq{"batch_id": batchID}).
		OrderBy("production_date", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []inventory.DailyProduction
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select daily production: %w", err)
	}
	return rows, nil
}

var _ inventory.Repository = (*InventoryRepo)(nil)
