package expressions

import (
	"context"

	"github.com/itchyny/gojq"

	"github.com/rendis/wfgraph/pkg/schema"
)

// jqPrelude binds the condition helpers to the run variables so conditions
// read `gate.ok`, `needs.build` and `success` the same way in every dialect.
const jqPrelude = "def gate: $gate; def needs: $needs; def success: $success; def failure: $failure; "

var jqVariables = []string{"$gate", "$needs", "$success", "$failure"}

// JQEngine implements Engine with itchyny/gojq. The input document is
// {"gate": ..., "needs": ...} and the first output of the program must be
// a bool. Compiled programs are cached per expression; not safe for
// concurrent use.
type JQEngine struct {
	cache map[string]*gojq.Code
}

// NewJQEngine creates a new jq engine.
func NewJQEngine() *JQEngine {
	return &JQEngine{cache: make(map[string]*gojq.Code)}
}

// Name returns the engine identifier.
func (e *JQEngine) Name() string {
	return "jq"
}

// EvaluateBool compiles (or reuses) the condition and takes its first output.
func (e *JQEngine) EvaluateBool(ctx context.Context, expression string, scope Scope) (bool, error) {
	expression = Unwrap(expression)
	if expression == "" {
		return false, schema.NewError(schema.ErrCodeValidation, "empty jq condition")
	}

	code, err := e.getOrCompile(expression)
	if err != nil {
		return false, err
	}

	gate := normalizeForJQ(scope.gate())
	needs := make(map[string]any, len(scope.Needs))
	for k, v := range scope.Needs {
		needs[k] = v
	}
	input := map[string]any{"gate": gate, "needs": needs}

	iter := code.RunWithContext(ctx, input, gate, needs, scope.succeeded(), scope.failed())
	out, ok := iter.Next()
	if !ok {
		return false, schema.NewErrorf(schema.ErrCodeValidation, "jq condition %q produced no output", expression).
			WithDetails(map[string]any{"expression": expression})
	}
	if err, isErr := out.(error); isErr {
		return false, schema.NewErrorf(schema.ErrCodeValidation,
			"jq evaluation failed for %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}
	b, ok := out.(bool)
	if !ok {
		return false, notBool(e.Name(), expression, out)
	}
	return b, nil
}

func (e *JQEngine) getOrCompile(expression string) (*gojq.Code, error) {
	if code, ok := e.cache[expression]; ok {
		return code, nil
	}
	query, err := gojq.Parse(jqPrelude + expression)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"jq parse error in %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}
	code, err := gojq.Compile(query,
		gojq.WithVariables(jqVariables),
		// Conditions never read the process environment.
		gojq.WithEnvironLoader(func() []string { return nil }),
	)
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"jq compile error in %q: %s", expression, err.Error()).
			WithCause(err).
			WithDetails(map[string]any{"expression": expression})
	}
	e.cache[expression] = code
	return code, nil
}

// normalizeForJQ converts Go numbers to the int and float64 values gojq
// accepts, recursing into maps and slices.
func normalizeForJQ(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v := range val {
			out[k] = normalizeForJQ(v)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, v := range val {
			out[i] = normalizeForJQ(v)
		}
		return out
	case int64:
		return int(val)
	case int32:
		return int(val)
	case uint64:
		return float64(val)
	case float32:
		return float64(val)
	default:
		return v
	}
}

var _ Engine = (*JQEngine)(nil)
