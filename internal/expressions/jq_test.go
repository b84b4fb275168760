package expressions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJQEngine(t *testing.T) {
	e := NewJQEngine()
	assert.NotNil(t, e)
	assert.Equal(t, "jq", e.Name())
}

func TestJQ_GateInputs(t *testing.T) {
	e := NewJQEngine()
	scope := Scope{Gate: map[string]any{"approve": true, "env": "prod", "replicas": int64(3)}}

	ok, err := e.EvaluateBool(context.Background(), `${{ gate.approve and gate.env == "prod" }}`, scope)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.EvaluateBool(context.Background(), `.gate.replicas > 2`, scope)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.EvaluateBool(context.Background(), `gate.env == "staging"`, scope)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJQ_Needs(t *testing.T) {
	e := NewJQEngine()
	red := Scope{Needs: map[string]string{"build": "Success", "lint": "Fail"}}

	ok, err := e.EvaluateBool(context.Background(), "success", red)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.EvaluateBool(context.Background(), "failure", red)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.EvaluateBool(context.Background(), `[.needs[]] | all(. == "Success")`, red)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = e.EvaluateBool(context.Background(), `needs.lint == "Fail"`, red)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestJQ_FirstOutputWins(t *testing.T) {
	e := NewJQEngine()
	ok, err := e.EvaluateBool(context.Background(), "true, false", Scope{})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestJQ_Errors(t *testing.T) {
	e := NewJQEngine()
	ctx := context.Background()

	_, err := e.EvaluateBool(ctx, "", Scope{})
	requireValidation(t, err)

	_, err = e.EvaluateBool(ctx, "gate.approve and", Scope{})
	requireValidation(t, err)

	gErr := requireValidation(t, func() error { _, err := e.EvaluateBool(ctx, "empty", Scope{}); return err }())
	assert.Contains(t, gErr.Message, "no output")

	gErr = requireValidation(t, func() error { _, err := e.EvaluateBool(ctx, `"text"`, Scope{}); return err }())
	assert.Contains(t, gErr.Message, "expected bool")

	gErr = requireValidation(t, func() error { _, err := e.EvaluateBool(ctx, `error("denied")`, Scope{}); return err }())
	assert.Contains(t, gErr.Message, "evaluation failed")

	ok, err := e.EvaluateBool(ctx, "env.HOME == null", Scope{})
	require.NoError(t, err)
	assert.True(t, ok, "environment hidden")
}

func TestJQ_CachesCompiledCode(t *testing.T) {
	e := NewJQEngine()
	for range 2 {
		_, err := e.EvaluateBool(context.Background(), "gate.ok == true", Scope{})
		require.NoError(t, err)
	}
	assert.Len(t, e.cache, 1)
}
