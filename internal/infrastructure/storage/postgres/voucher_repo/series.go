// Package voucher_repo provides the PostgreSQL voucher series
// repository.
package voucher_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/domain/voucher"
	"refurbhq/internal/infrastructure/storage/postgres"
)

const seriesTable = "sys_voucher_series"

// SeriesRepo implements voucher.Repository.
type SeriesRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
	columns []string
}

// NewSeriesRepo creates a new voucher series repository.
func NewSeriesRepo(txm *postgres.TxManager) *SeriesRepo {
	return &SeriesRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns: postgres.ExtractDBColumns[voucher.Series](),
	}
}

// CreateSeries inserts a series.
func (r *SeriesRepo) CreateSeries(ctx context.Context, s *voucher.Series) error {
	q := r.builder.Insert(seriesTable).SetMap(postgres.StructToMap(s))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("voucher series", "name", s.Name)
		}
		return fmt.Errorf("insert series: %w", err)
	}
	return nil
}

// GetByName retrieves a series.
func (r *SeriesRepo) GetByName(ctx context.Context, name string) (*voucher.Series, error) {
	q := r.builder.Select(r.columns...).
		From(seriesTable).
		Where(squirrel.Eq{"name": name})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s voucher.Series
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("voucher series", name)
		}
		return nil, fmt.Errorf("get series: %w", err)
	}
	return &s, nil
}

// List returns all series ordered by name.
func (r *SeriesRepo) List(ctx context.Context) ([]voucher.Series, error) {
	q := r.builder.Select(r.columns...).
		From(seriesTable).
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var series []voucher.Series
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &series, sql, args...); err != nil {
		return nil, fmt.Errorf("select series: %w", err)
	}
	return series, nil
}

// NextNumber allocates the next counter value in one atomic statement.
// The row-level write lock taken by UPDATE serializes concurrent
// callers; each sees the value its own increment produced.
func (r *SeriesRepo) NextNumber(ctx context.Context, name string) (int64, string, error) {
	sql := `
		UPDATE sys_voucher_series
		SET current_number = current_number + 1,
		    updated_at = now()
		WHERE name = $1
		RETURNING current_number, prefix
	`

	var number int64
	var prefix string
	err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, name).Scan(&number, &prefix)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, "", apperror.NewNotFound("voucher series", name)
		}
		return 0, "", fmt.Errorf("advance series %q: %w", name, err)
	}
	return number, prefix, nil
}

var _ voucher.Repository = (*SeriesRepo)(nil)
