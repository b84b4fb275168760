package expressions

import (
	"context"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/rendis/wfgraph/pkg/schema"
)

// ExprEngine implements Engine with expr-lang/expr. Conditions see `gate`,
// `needs` and the helpers success() and failure() over the needs statuses.
// Compiled programs are cached per expression; not safe for concurrent use.
type ExprEngine struct {
	cache map[string]*vm.Program
}

// NewExprEngine creates a new Expr engine.
func NewExprEngine() *ExprEngine {
	return &ExprEngine{cache: make(map[string]*vm.Program)}
}

// Name returns the engine identifier.
func (e *ExprEngine) Name() string {
	return "expr"
}

// EvaluateBool compiles (or reuses) the condition and runs it against scope.
func (e *ExprEngine) EvaluateBool(ctx context.Context, expression string, scope Scope) (bool, error) {
	expression = Unwrap(expression)
	if expression == "" {
		return false, schema.NewError(schema.ErrCodeValidation, "empty expr condition")
	}

	env := exprEnv(scope)
	prg, err := e.getOrCompile(expression, env)
	if err != nil {
		return false, err
	}

	out, err := vm.Run(prg, env)
	if err != nil {
		return false, schema.NewErrorf(schema.ErrCodeValidation,
			"expr evaluation failed for %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}
	b, ok := out.(bool)
	if !ok {
		return false, notBool(e.Name(), expression, out)
	}
	return b, nil
}

func exprEnv(scope Scope) map[string]any {
	return map[string]any{
		"gate":    scope.gate(),
		"needs":   scope.needs(),
		"success": func() bool { return scope.succeeded() },
		"failure": func() bool { return scope.failed() },
	}
}

func (e *ExprEngine) getOrCompile(expression string, env map[string]any) (*vm.Program, error) {
	if prg, ok := e.cache[expression]; ok {
		return prg, nil
	}
	prg, err := expr.Compile(expression,
		expr.Env(env),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"expr compile error in %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}
	e.cache[expression] = prg
	return prg, nil
}

var _ Engine = (*ExprEngine)(nil)
