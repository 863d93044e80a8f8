// Package pricing_repo provides the PostgreSQL pricing rule
// repository.
package pricing_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/id"
	"refurbhq/internal/domain/pricing"
	"refurbhq/internal/infrastructure/storage/postgres"
)

const rulesTable = "cfg_pricing_rules"

// RuleRepo implements pricing.Repository.
type RuleRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
	columns []string
}

// NewRuleRepo creates a new pricing rule repository.
func NewRuleRepo(txm *postgres.TxManager) *RuleRepo {
	return &RuleRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns: postgres.ExtractDBColumns[pricing.Rule](),
	}
}

// Create inserts a rule.
func (r *RuleRepo) Create(ctx context.Context, rule *pricing.Rule) error {
	q := r.builder.Insert(rulesTable).SetMap(postgres.StructToMap(rule))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("pricing rule", "name", rule.Name)
		}
		return fmt.Errorf("insert pricing rule: %w", err)
	}
	return nil
}

// Update saves a rule with an optimistic version check.
func (r *RuleRepo) Update(ctx context.Context, rule *pricing.Rule) error {
	values := postgres.StructToMap(rule)
	prevVersion := rule.Version - 1
	delete(values, "id")
	delete(values, "created_at")

	q := r.builder.Update(rulesTable).
		SetMap(values).
		Where(squirrel.Eq{"id": rule.ID, "version": prevVersion})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update pricing rule: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("pricing rule", rule.ID)
	}
	return nil
}

// GetByID retrieves a rule.
func (r *RuleRepo) GetByID(ctx context.Context, ruleID id.ID) (*pricing.Rule, error) {
	q := r.builder.Select(r.columns...).
		From(rulesTable).
		Where(squirrel.Eq{"id": ruleID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rule pricing.Rule
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &rule, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("pricing rule", ruleID.String())
		}
		return nil, fmt.Errorf("get pricing rule: %w", err)
	}
	return &rule, nil
}

// ListActive returns active rules ordered by priority descending.
func (r *RuleRepo) ListActive(ctx context.Context) ([]pricing.Rule, error) {
	q := r.builder.Select(r.columns...).
		From(rulesTable).
		Where(squirrel.Eq{"active": true}).
		OrderBy("priority DESC", "name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rules []pricing.Rule
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rules, sql, args...); err != nil {
		return nil, fmt.Errorf("select pricing rules: %w", err)
	}
	return rules, nil
}

// List returns a page of rules ordered by priority descending.
func (r *RuleRepo) List(ctx context.Context, limit, offset int) ([]pricing.Rule, error) {
	q := r.builder.Select(r.columns...).
		From(rulesTable).
		OrderBy("priority DESC", "name")
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

	var rules []pricing.Rule
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rules, sql, args...); err != nil {
		return nil, fmt.Errorf("select pricing rules: %w", err)
	}
	return rules, nil
}

var _ pricing.Repository = (*RuleRepo)(nil)
