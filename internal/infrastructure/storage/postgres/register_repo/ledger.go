// Package register_repo provides PostgreSQL implementations for the
// register repositories (customer ledger and inventory rollups).
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/domain/ledger"
	"refurbhq/internal/infrastructure/storage/postgres"
)

const ledgerTable = "reg_customer_ledger"

// LedgerRepo implements ledger.Repository.
type LedgerRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
	columns []string
}

// NewLedgerRepo creates a new customer ledger repository.
func NewLedgerRepo(txm *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns: postgres.ExtractDBColumns[ledger.Entry](),
	}
}

// LockCustomer takes a row lock on the customer so concurrent appends
// for the same customer serialize on the lock, not on the entries.
func (r *LedgerRepo) LockCustomer(ctx context.Context, customerID id.ID) error {
	sql := `SELECT id FROM cat_customers WHERE id = $1 FOR UPDATE`

	var locked id.ID
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, customerID).Scan(&locked); err != nil {
		if pgxscan.NotFound(err) {
			return apperror.NewNotFound("customer", customerID.String())
		}
		return fmt.Errorf("lock customer: %w", err)
	}
	return nil
}

// GetLastEntry returns the latest entry under the (entry_date, id)
// total order. IDs are UUIDv7, so the id tiebreak is insertion order.
func (r *LedgerRepo) GetLastEntry(ctx context.Context, customerID id.ID) (*ledger.Entry, error) {
	q := r.builder.Select(r.columns...).
		From(ledgerTable).
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("entry_date DESC", "id DESC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var e ledger.Entry
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("ledger entry", customerID.String())
		}
		return nil, fmt.Errorf("get last entry: %w", err)
	}
	return &e, nil
}

// Create appends the entry. Entries are never updated after insert.
func (r *LedgerRepo) Create(ctx context.Context, e *ledger.Entry) error {
	q := r.builder.Insert(ledgerTable).SetMap(postgres.StructToMap(e))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewNotFound("customer", e.CustomerID.String())
		}
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// ListByCustomer returns entries in ledger order.
func (r *LedgerRepo) ListByCustomer(ctx context.Context, customerID id.ID, limit, offset int) ([]ledger.Entry, error) {
	q := r.builder.Select(r.columns...).
		From(ledgerTable).
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("entry_date", "id")
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

	var entries []ledger.Entry
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("select ledger entries: %w", err)
	}
	return entries, nil
}

var _ ledger.Repository = (*LedgerRepo)(nil)
