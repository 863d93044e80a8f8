package pricing

import (
	"context"

	"refurbhq/internal/core/id"
	"refurbhq/internal/core/types"
	"refurbhq/pkg/logger"
)

// Service manages discount rules and resolves the discount for an order.
type Service struct {
	repo      Repository
	evaluator *Evaluator
}

// NewService creates a new pricing service.
func NewService(repo Repository, evaluator *Evaluator) *Service {
	return &Service{
		repo:      repo,
		evaluator: evaluator,
	}
}

// CreateRule validates and persists a rule. The expression is compiled
// up front so bad rules never reach evaluation.
func (s *Service) CreateRule(ctx context.Context, r *Rule) error {
	if err := r.Validate(ctx); err != nil {
		return err
	}
	if _, err := s.evaluator.Compile(r.Expression); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return err
	}

	logger.Info(ctx, "pricing rule created",
		"rule_id", r.ID,
		"name", r.Name,
		"priority", r.Priority,
	)
	return nil
}

// UpdateRule validates, recompiles and persists rule changes.
func (s *Service) UpdateRule(ctx context.Context, r *Rule) error {
	if err := r.Validate(ctx); err != nil {
		return err
	}
	if _, err := s.evaluator.Compile(r.Expression); err != nil {
		return err
	}

	r.Touch()
	return s.repo.Update(ctx, r)
}

// GetRule returns a rule by id.
func (s *Service) GetRule(ctx context.Context, ruleID id.ID) (*Rule, error) {
	return s.repo.GetByID(ctx, ruleID)
}

// ResolveDiscount evaluates the active rules against the facts, highest
// priority first, and returns the first match's discount percent. No
// match yields zero. A rule that fails to compile or evaluate is
// skipped: a broken rule must not block order entry.
func (s *Service) ResolveDiscount(ctx context.Context, facts Facts) (types.Money, *Rule, error) {
	rules, err := s.repo.ListActive(ctx)
	if err != nil {
		return types.ZeroMoney(), nil, err
	}

	for i := range rules {
		rule := &rules[i]

		prg, err := s.evaluator.Compile(rule.Expression)
		if err != nil {
			logger.Warn(ctx, "skipping broken pricing rule",
				"rule_id", rule.ID,
				"error", err,
			)
			continue
		}

		matched, err := s.evaluator.Matches(prg, facts)
		if err != nil {
			logger.Warn(ctx, "skipping failing pricing rule",
				"rule_id", rule.ID,
				"error", err,
			)
			continue
		}
		if matched {
			return rule.DiscountPercent, rule, nil
		}
	}

	return types.ZeroMoney(), nil, nil
}

// ListRules returns a page of rules.
func (s *Service) ListRules(ctx context.Context, limit, offset int) ([]Rule, error) {
	return s.repo.List(ctx, limit, offset)
}
