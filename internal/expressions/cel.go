package expressions

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/rendis/wfgraph/pkg/schema"
)

// CELEngine implements Engine with the Common Expression Language.
// Conditions see `gate` (map(string, dyn)) and `needs` (map(string, string));
// the success()/failure() helpers are expr-only, write
// `needs.all(k, needs[k] == "Success")` instead.
// Compiled programs are cached per expression; not safe for concurrent use.
type CELEngine struct {
	env   *cel.Env
	cache map[string]cel.Program
}

// NewCELEngine creates a new CEL engine.
func NewCELEngine() (*CELEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("gate", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("needs", cel.MapType(cel.StringType, cel.StringType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	return &CELEngine{env: env, cache: make(map[string]cel.Program)}, nil
}

// Name returns the engine identifier.
func (e *CELEngine) Name() string {
	return "cel"
}

// EvaluateBool compiles (or reuses) the condition and evaluates it against scope.
func (e *CELEngine) EvaluateBool(ctx context.Context, expression string, scope Scope) (bool, error) {
	expression = Unwrap(expression)
	if expression == "" {
		return false, schema.NewError(schema.ErrCodeValidation, "empty CEL condition")
	}

	prg, err := e.getOrCompile(expression)
	if err != nil {
		return false, err
	}

	out, _, err := prg.ContextEval(ctx, map[string]any{
		"gate":  scope.gate(),
		"needs": scope.needs(),
	})
	if err != nil {
		return false, schema.NewErrorf(schema.ErrCodeValidation,
			"CEL evaluation failed for %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, notBool(e.Name(), expression, out.Value())
	}
	return b, nil
}

func (e *CELEngine) getOrCompile(expression string) (cel.Program, error) {
	if prg, ok := e.cache[expression]; ok {
		return prg, nil
	}

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"CEL compile error in %q: %s", expression, issues.Err().Error()).
			WithCause(issues.Err()).
			WithDetails(map[string]any{"expression": expression})
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"CEL program error for %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}

	e.cache[expression] = prg
	return prg, nil
}

var _ Engine = (*CELEngine)(nil)
