package diagram

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/wfgraph/internal/expressions"
	"github.com/rendis/wfgraph/pkg/schema"
)

func gateOf(t *testing.T, g *Graph) *Vertex {
	t.Helper()
	deploy, ok := g.Node("deploy")
	require.True(t, ok)
	v, ok := deploy.Sub.Node("gate-ship")
	require.True(t, ok)
	return v
}

func TestEvaluateGates(t *testing.T) {
	ctx := context.Background()
	eng := expressions.NewExprEngine()

	tests := []struct {
		name   string
		events []schema.JobEvent
		want   GateState
	}{
		{"no approval", nil, GatePending},
		{"approved", []schema.JobEvent{{JobID: "ship", Inputs: map[string]any{"ok": true}}}, GateOpen},
		{"default input applies", []schema.JobEvent{{JobID: "ship"}}, GateClosed},
		{"other job event", []schema.JobEvent{{JobID: "notify", Inputs: map[string]any{"ok": true}}}, GatePending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, _ := Translate(releaseWorkflow())
			BindEvents(nodes, tt.events)
			g := BuildGraph(nodes)

			require.NoError(t, EvaluateGates(ctx, eng, g))
			assert.Equal(t, tt.want, gateOf(t, g).Gate)
		})
	}
}

func TestEvaluateGates_InvalidCondition(t *testing.T) {
	wf := releaseWorkflow()
	wf.Gates["approve"] = schema.Gate{If: "gate.ok +"}
	nodes, _ := Translate(wf)
	BindEvents(nodes, []schema.JobEvent{{JobID: "ship"}})
	g := BuildGraph(nodes)

	err := EvaluateGates(context.Background(), expressions.NewExprEngine(), g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gate gate-ship")
	assert.Equal(t, GateInvalid, gateOf(t, g).Gate)
}

func TestEvaluateGate_NeedsStatuses(t *testing.T) {
	a := withRun(jobNode("a"), schema.StatusSuccess)
	gate := &GraphNode{
		Name:      "gate-b",
		Kind:      NodeKindGate,
		GateName:  "approve",
		GateChild: "b",
		Gate:      &schema.Gate{If: "needs.a == 'Success' && success()"},
		Event:     &schema.JobEvent{JobID: "b"},
	}
	b := jobNode("b", "a")
	scope := []*GraphNode{a, gate, b}

	state, err := EvaluateGate(context.Background(), expressions.NewExprEngine(), gate, scope)
	require.NoError(t, err)
	assert.Equal(t, GateOpen, state)

	a.Run.Status = schema.StatusFail
	state, err = EvaluateGate(context.Background(), expressions.NewExprEngine(), gate, scope)
	require.NoError(t, err)
	assert.Equal(t, GateClosed, state)
}

func TestEvaluateGate_NoCondition(t *testing.T) {
	gate := &GraphNode{Name: "gate-b", Kind: NodeKindGate, Gate: &schema.Gate{}, Event: &schema.JobEvent{}}
	state, err := EvaluateGate(context.Background(), expressions.NewExprEngine(), gate, nil)
	require.NoError(t, err)
	assert.Equal(t, GateOpen, state)
}

func TestEvaluateGate_RejectsNonGate(t *testing.T) {
	_, err := EvaluateGate(context.Background(), expressions.NewExprEngine(), jobNode("a"), nil)
	assert.Error(t, err)
}
