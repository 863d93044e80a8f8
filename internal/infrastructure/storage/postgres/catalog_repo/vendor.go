package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/domain/catalogs/vendor"
	"refurbhq/internal/infrastructure/storage/postgres"
)

const vendorsTable = "cat_vendors"

// VendorRepo implements vendor.Repository.
type VendorRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
	columns []string
}

// NewVendorRepo creates a new vendor repository.
func NewVendorRepo(txm *postgres.TxManager) *VendorRepo {
	return &VendorRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns: postgres.ExtractDBColumns[vendor.Vendor](),
	}
}

// Create inserts a vendor.
func (r *VendorRepo) Create(ctx context.Context, v *vendor.Vendor) error {
	q := r.builder.Insert(vendorsTable).SetMap(postgres.StructToMap(v))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("vendor", "name", v.Name)
		}
		return fmt.Errorf("insert vendor: %w", err)
	}
	return nil
}

// Update saves a vendor with an optimistic version check.
func (r *VendorRepo) Update(ctx context.Context, v *vendor.Vendor) error {
	values := postgres.StructToMap(v)
	prevVersion := v.Version - 1
	delete(values, "id")
	delete(values, "created_at")

	q := r.builder.Update(vendorsTable).
		SetMap(values).
		Where(squirrel.Eq{"id": v.ID, "version": prevVersion})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update vendor: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("vendor", v.ID)
	}
	return nil
}

// GetByID retrieves a vendor.
func (r *VendorRepo) GetByID(ctx context.Context, vendorID id.ID) (*vendor.Vendor, error) {
	q := r.builder.Select(r.columns...).
		From(vendorsTable).
		Where(squirrel.Eq{"id": vendorID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var v vendor.Vendor
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &v, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("vendor", vendorID.String())
		}
		return nil, fmt.Errorf("get vendor: %w", err)
	}
	return &v, nil
}

// List returns a page of vendors ordered by name.
func (r *VendorRepo) List(ctx context.Context, limit, offset int) ([]vendor.Vendor, error) {
	q := r.builder.Select(r.columns...).
		From(vendorsTable).
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

	var vendors []vendor.Vendor
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &vendors, sql, args...); err != nil {
		return nil, fmt.Errorf("select vendors: %w", err)
	}
	return vendors, nil
}

var _ vendor.Repository = (*VendorRepo)(nil)
