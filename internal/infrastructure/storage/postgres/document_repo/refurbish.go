// Package document_repo provides PostgreSQL implementations for the
// document repositories (refurbishing batches, sales and purchases).
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/domain/refurbish"
	"refurbhq/internal/infrastructure/storage/postgres"
)

const (
	batchesTable = "doc_refurbish_batches"
	usagesTable  = "doc_component_usages"
)

// RefurbishRepo implements refurbish.Repository.
type RefurbishRepo struct {
	txm          *postgres.TxManager
	builder      squirrel.StatementBuilderType
	batchColumns []string
	usageColumns []string
}

// NewRefurbishRepo creates a new refurbishing repository.
func NewRefurbishRepo(txm *postgres.TxManager) *RefurbishRepo {
	return &RefurbishRepo{
		txm:          txm,
		builder:      squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		batchColumns: postgres.ExtractDBColumns[refurbish.Batch](),
		usageColumns: postgres.ExtractDBColumns[refurbish.Usage](),
	}
}

// CreateBatch inserts a batch.
func (r *RefurbishRepo) CreateBatch(ctx context.Context, b *refurbish.Batch) error {
	q := r.builder.Insert(batchesTable).SetMap(postgres.StructToMap(b))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("batch", "serial_number", b.SerialNumber)
		}
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewNotFound("product", b.ProductID.String())
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// GetBatch retrieves a batch.
func (r *RefurbishRepo) GetBatch(ctx context.Context, batchID id.ID) (*refurbish.Batch, error) {
	return r.getBatch(ctx, squirrel.Eq{"id": batchID}, batchID.String())
}

// FindBySerial retrieves a batch by its unique serial number.
func (r *RefurbishRepo) FindBySerial(ctx context.Context, serialNumber string) (*refurbish.Batch, error) {
	return r.getBatch(ctx, squirrel.Eq{"serial_number": serialNumber}, serialNumber)
}

func (r *RefurbishRepo) getBatch(ctx context.Context, where squirrel.Eq, key string) (*refurbish.Batch, error) {
	q := r.builder.Select(r.batchColumns...).
		From(batchesTable).
		Where(where)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var b refurbish.Batch
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("batch", key)
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return &b, nil
}

// ListBatches returns batches, newest production first.
func (r *RefurbishRepo) ListBatches(ctx context.Context, limit, offset int) ([]refurbish.Batch, error) {
	q := r.builder.Select(r.batchColumns...).
		From(batchesTable).
		OrderBy("production_date DESC", "id DESC")
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

	var batches []refurbish.Batch
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &batches, sql, args...); err != nil {
		return nil, fmt.Errorf("select batches: %w", err)
	}
	return batches, nil
}

// CreateUsage inserts a usage fact. Usages are never updated.
func (r *RefurbishRepo) CreateUsage(ctx context.Context, u *refurbish.Usage) error {
	q := r.builder.Insert(usagesTable).SetMap(postgres.StructToMap(u))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewNotFound("batch or component", u.BatchID.String())
		}
		return fmt.Errorf("insert usage: %w", err)
	}
	return nil
}

// ListUsages returns a batch's usages in insertion order.
func (r *RefurbishRepo) ListUsages(ctx context.Context, batchID id.ID) ([]refurbish.Usage, error) {
	q := r.builder.Select(r.usageColumns...).
		From(usagesTable).
		Where(squirrel.Eq{"batch_id": batchID}).
		OrderBy("created_at", "id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var usages []refurbish.Usage
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &usages, sql, args...); err != nil {
		return nil, fmt.Errorf("select usages: %w", err)
	}
	return usages, nil
}

var _ refurbish.Repository = (*RefurbishRepo)(nil)
