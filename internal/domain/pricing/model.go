// Package pricing provides discount rules evaluated against order
// facts. Rule conditions are CEL expressions over the customer and
// order attributes; the highest-priority matching rule wins.
package pricing

import (
	"context"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/entity"
	"refurbhq/internal/core/id"
	"refurbhq/internal/core/types"
)

// Rule is one discount rule. Expression must be a boolean CEL
// expression over the Facts fields, e.g.
//
//	shop_type == "MT" && subtotal >= 10000.0
type Rule struct {
	entity.BaseEntity

	Name       string `db:"name" json:"name"`
	Expression string `db:"expression" json:"expression"`

	DiscountPercent types.Money `db:"discount_percent" json:"discountPercent"`

	// Priority orders evaluation, highest first
	Priority int  `db:"priority" json:"priority"`
	Active   bool `db:"active" json:"active"`
}

// Validate implements entity.Validatable. Expression compilation is
// checked separately by the evaluator.
func (r *Rule) Validate(ctx context.Context) error {
	if r.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if r.Expression == "" {
		return apperror.NewValidation("expression is required").
			WithDetail("field", "expression")
	}
	if r.DiscountPercent.IsNegative() || r.DiscountPercent.GreaterThan(types.NewMoneyFromInt(100)) {
		return apperror.NewValidation("discount percent must be between 0 and 100").
			WithDetail("field", "discountPercent")
	}
	return nil
}

// Facts are the attributes a rule expression can reference.
type Facts struct {
	ShopType        string
	IsNew           bool
	IsGSTRegistered bool
	OrderType       string
	Subtotal        types.Money
}

// Repository defines persistence operations for pricing rules.
type Repository interface {
	Create(ctx context.Context, r *Rule) error
	Update(ctx context.Context, r *Rule) error
	GetByID(ctx context.Context, ruleID id.ID) (*Rule, error)

	// ListActive returns active rules ordered by priority descending.
	ListActive(ctx context.Context) ([]Rule, error)

	List(ctx context.Context, limit, offset int) ([]Rule, error)
}
