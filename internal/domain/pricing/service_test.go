package pricing

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refurbhq/internal/core/apperror"
	"refurbhq/internal/core/entity"
	"refurbhq/internal/core/id"
	"refurbhq/internal/core/types"
)

type fakeRepo struct {
	rules []Rule
}

func (r *fakeRepo) Create(ctx context.Context, rule *Rule) error {
	r.rules = append(r.rules, *rule)
	return nil
}

func (r *fakeRepo) Update(ctx context.Context, rule *Rule) error {
	for i := range r.rules {
		if r.rules[i].ID == rule.ID {
			r.rules[i] = *rule
			return nil
		}
	}
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, ruleID id.ID) (*Rule, error) {
	for i := range r.rules {
		if r.rules[i].ID == ruleID {
			rule := r.rules[i]
			return &rule, nil
		}
	}
	return nil, apperror.NewNotFound("pricing rule", ruleID.String())
}

func (r *fakeRepo) ListActive(ctx context.Context) ([]Rule, error) {
	var out []Rule
	for _, rule := range r.rules {
		if rule.Active {
			out = append(out, rule)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out, nil
}

func (r *fakeRepo) List(ctx context.Context, limit, offset int) ([]Rule, error) {
	return r.rules, nil
}

func newTestService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()
	evaluator, err := NewEvaluator()
	require.NoError(t, err)
	repo := &fakeRepo{}
	return NewService(repo, evaluator), repo
}

func newRule(name, expression, discount string, priority int) *Rule {
	return &Rule{
		BaseEntity:      entity.NewBaseEntity(),
		Name:            name,
		Expression:      expression,
		DiscountPercent: types.MustMoney(discount),
		Priority:        priority,
		Active:          true,
	}
}

func TestCreateRule_RejectsBadExpression(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	err := svc.CreateRule(ctx, newRule("broken", "shop_type ==", "5", 1))
	require.Error(t, err)

	// Well-typed but non-boolean expressions are rejected too.
	err = svc.CreateRule(ctx, newRule("non-bool", `shop_type + "x"`, "5", 1))
	require.Error(t, err)

	// Unknown variables fail compilation.
	err = svc.CreateRule(ctx, newRule("unknown-var", "region == \"north\"", "5", 1))
	require.Error(t, err)
}

func TestUpdateRule_RecompilesExpression(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created := newRule("modern trade", `shop_type == "MT"`, "5", 1)
	require.NoError(t, svc.CreateRule(ctx, created))

	rule, err := svc.GetRule(ctx, created.ID)
	require.NoError(t, err)

	rule.Expression = "shop_type =="
	require.Error(t, svc.UpdateRule(ctx, rule))

	rule.Expression = "is_new"
	rule.Active = false
	require.NoError(t, svc.UpdateRule(ctx, rule))
	assert.Equal(t, created.Version+1, rule.Version)

	stored, err := svc.GetRule(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
	assert.Equal(t, "is_new", stored.Expression)
}

func TestResolveDiscount_HighestPriorityWins(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.CreateRule(ctx,
		newRule("modern trade", `shop_type == "MT"`, "5", 10)))
	require.NoError(t, svc.CreateRule(ctx,
		newRule("big modern trade", `shop_type == "MT" && subtotal >= 10000.0`, "12", 20)))

	discount, rule, err := svc.ResolveDiscount(ctx, Facts{
		ShopType: "MT",
		Subtotal: types.MustMoney("15000"),
	})
	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.Equal(t, "big modern trade", rule.Name)
	assert.True(t, discount.Equal(types.MustMoney("12")))

	// Below the threshold only the generic rule matches.
	discount, rule, err = svc.ResolveDiscount(ctx, Facts{
		ShopType: "MT",
		Subtotal: types.MustMoney("2000"),
	})
	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.Equal(t, "modern trade", rule.Name)
	assert.True(t, discount.Equal(types.MustMoney("5")))
}

func TestResolveDiscount_NoMatchYieldsZero(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.CreateRule(ctx,
		newRule("new shops", "is_new", "3", 1)))

	discount, rule, err := svc.ResolveDiscount(ctx, Facts{ShopType: "GT"})
	require.NoError(t, err)
	assert.Nil(t, rule)
	assert.True(t, discount.IsZero())
}

func TestResolveDiscount_SkipsBrokenRule(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	// Sneak a broken rule straight into storage, as if the schema of
	// facts changed after the rule was written.
	repo.rules = append(repo.rules, Rule{
		BaseEntity:      entity.NewBaseEntity(),
		Name:            "stale",
		Expression:      `removed_field == "x"`,
		DiscountPercent: types.MustMoney("50"),
		Priority:        100,
		Active:          true,
	})
	require.NoError(t, svc.CreateRule(ctx,
		newRule("gst shops", "is_gst_registered", "7", 1)))

	discount, rule, err := svc.ResolveDiscount(ctx, Facts{IsGSTRegistered: true})
	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.Equal(t, "gst shops", rule.Name)
	assert.True(t, discount.Equal(types.MustMoney("7")))
}

func TestResolveDiscount_InactiveRulesIgnored(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	r := newRule("disabled", "true", "9", 5)
	r.Active = false
	repo.rules = append(repo.rules, *r)

	discount, rule, err := svc.ResolveDiscount(ctx, Facts{})
	require.NoError(t, err)
	assert.Nil(t, rule)
	assert.True(t, discount.IsZero())
}
