// Package expressions evaluates gate conditions.
package expressions

import (
	"context"
	"fmt"
	"strings"

	"github.com/rendis/wfgraph/pkg/schema"
)

// Engine evaluates a boolean gate condition against a Scope.
// Implementations: Expr (default dialect), CEL and jq.
type Engine interface {
	Name() string
	EvaluateBool(ctx context.Context, expression string, scope Scope) (bool, error)
}

// Scope is the data visible to a gate condition.
type Scope struct {
	// Gate holds the gate inputs: declared defaults overlaid by the approval.
	Gate map[string]any
	// Needs maps each dependency of the guarded job to its run status.
	Needs map[string]string
}

func (s Scope) gate() map[string]any {
	if s.Gate == nil {
		return map[string]any{}
	}
	return s.Gate
}

func (s Scope) needs() map[string]string {
	if s.Needs == nil {
		return map[string]string{}
	}
	return s.Needs
}

// succeeded reports whether every dependency ended in Success.
func (s Scope) succeeded() bool {
	for _, st := range s.Needs {
		if st != string(schema.StatusSuccess) {
			return false
		}
	}
	return true
}

// failed reports whether any dependency ended in Fail.
func (s Scope) failed() bool {
	for _, st := range s.Needs {
		if st == string(schema.StatusFail) {
			return true
		}
	}
	return false
}

// Unwrap strips an optional ${{ ... }} wrapper from a condition.
func Unwrap(expression string) string {
	s := strings.TrimSpace(expression)
	if strings.HasPrefix(s, "${{") && strings.HasSuffix(s, "}}") {
		s = strings.TrimSpace(s[3 : len(s)-2])
	}
	return s
}

// New returns the engine registered under name. An empty name selects expr.
func New(name string) (Engine, error) {
	switch name {
	case "", "expr":
		return NewExprEngine(), nil
	case "cel":
		e, err := NewCELEngine()
		if err != nil {
			return nil, err
		}
		return e, nil
	case "jq":
		return NewJQEngine(), nil
	default:
		return nil, schema.NewErrorf(schema.ErrCodeInvalidInput, "unknown expression engine %q", name).
			WithDetails(map[string]any{"available": []string{"expr", "cel", "jq"}})
	}
}

func notBool(engine, expression string, out any) error {
	return schema.NewErrorf(schema.ErrCodeValidation,
		"%s condition %q returned %T, expected bool", engine, expression, out).
		WithDetails(map[string]any{"expression": expression, "result": fmt.Sprint(out)})
}
