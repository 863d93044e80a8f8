// Package catalog_repo provides PostgreSQL implementations for catalog
// repositories.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/domain/catalogs/component"
	"refurbhq/internal/infrastructure/storage/postgres"
)

const componentsTable = "cat_components"

// ComponentRepo implements component.Repository.
type ComponentRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
	columns []string
}

// NewComponentRepo creates a new component repository.
func NewComponentRepo(txm *postgres.TxManager) *ComponentRepo {
	return &ComponentRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns: postgres.ExtractDBColumns[component.Component](),
	}
}

// Create inserts a component.
func (r *ComponentRepo) Create(ctx context.Context, c *component.Component) error {
	q := r.builder.Insert(componentsTable).SetMap(postgres.StructToMap(c))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("component", "name", c.Name)
		}
		return fmt.Errorf("insert component: %w", err)
	}
	return nil
}

// Update saves a component with an optimistic version check.
func (r *ComponentRepo) Update(ctx context.Context, c *component.Component) error {
	values := postgres.StructToMap(c)
	prevVersion := c.Version - 1
	delete(values, "id")
	delete(values, "created_at")

	q := r.builder.Update(componentsTable).
		SetMap(values).
		Where(squirrel.Eq{"id": c.ID, "version": prevVersion})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update component: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("component", c.ID)
	}
	return nil
}

// GetByID retrieves a component.
func (r *ComponentRepo) GetByID(ctx context.Context, componentID id.ID) (*component.Component, error) {
	return r.get(ctx, componentID, false)
}

// GetForUpdate retrieves a component with a row lock.
func (r *ComponentRepo) GetForUpdate(ctx context.Context, componentID id.ID) (*component.Component, error) {
	return r.get(ctx, componentID, true)
}

func (r *ComponentRepo) get(ctx context.Context, componentID id.ID, forUpdate bool) (*component.Component, error) {
	q := r.builder.Select(r.columns...).
		From(componentsTable).
		Where(squirrel.Eq{"id": componentID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c component.Component
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("component", componentID.String())
		}
		return nil, fmt.Errorf("get component: %w", err)
	}
	return &c, nil
}

// DecrementStock subtracts qty in a single guarded statement, so the
// counter can never drop below zero even under concurrent writers.
func (r *ComponentRepo) DecrementStock(ctx context.Context, componentID id.ID, qty int64) error {
	sql := `
		UPDATE cat_components
		SET stock_quantity = stock_quantity - $2,
		    updated_at = now()
		WHERE id = $1 AND stock_quantity >= $2
	`

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, componentID, qty)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		c, getErr := r.GetByID(ctx, componentID)
		if getErr != nil {
			return getErr
		}
		return apperror.NewInsufficientStock(componentID.String(), c.Name, qty, c.StockQuantity)
	}
	return nil
}

// IncrementStock adds received quantity to the counter.
func (r *ComponentRepo) IncrementStock(ctx context.Context, componentID id.ID, qty int64) error {
	sql := `
		UPDATE cat_components
		SET stock_quantity = stock_quantity + $2,
		    updated_at = now()
		WHERE id = $1
	`

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, componentID, qty)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("component", componentID.String())
	}
	return nil
}

// List returns a page of components ordered by name.
func (r *ComponentRepo) List(ctx context.Context, limit, offset int) ([]component.Component, error) {
	q := r.builder.Select(r.columns...).
		From(componentsTable).
		OrderBy("name")
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

	var components []component.Component
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &components, sql, args...); err != nil {
		return nil, fmt.Errorf("select components: %w", err)
	}
	return components, nil
}

var _ component.Repository = (*ComponentRepo)(nil)
