package pricing

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"refurbhq/internal/core/apperror"
)

// Evaluator compiles and runs rule expressions. The CEL environment
// declares exactly the Facts fields; anything else in an expression is
// a compile error surfaced at rule creation time.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator builds the shared CEL environment.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("shop_type", cel.StringType),
		cel.Variable("is_new", cel.BoolType),
		cel.Variable("is_gst_registered", cel.BoolType),
		cel.Variable("order_type", cel.StringType),
		cel.Variable("subtotal", cel.DoubleType),
	)
	if err != nil {
		return nil, fmt.Errorf("build rule environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Compile checks that the expression parses, type-checks and yields a
// boolean, returning the runnable program.
func (e *Evaluator) Compile(expression string) (cel.Program, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, apperror.NewValidation("invalid rule expression").
			WithDetail("field", "expression").
			WithCause(issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, apperror.NewValidation("rule expression must yield a boolean").
			WithDetail("field", "expression").
			WithDetail("outputType", ast.OutputType().String())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build rule program: %w", err)
	}
	return prg, nil
}

// Matches evaluates a compiled rule against the facts.
func (e *Evaluator) Matches(prg cel.Program, facts Facts) (bool, error) {
	subtotal, _ := facts.Subtotal.Float64()

	out, _, err := prg.Eval(map[string]any{
		"shop_type":         facts.ShopType,
		"is_new":            facts.IsNew,
		"is_gst_registered": facts.IsGSTRegistered,
		"order_type":        facts.OrderType,
		"subtotal":          subtotal,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate rule: %w", err)
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule yielded %T, want bool", out.Value())
	}
	return matched, nil
}
