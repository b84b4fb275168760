package diagram

import (
	"context"
	"errors"
	"fmt"

	"github.com/rendis/wfgraph/internal/expressions"
)

// GateState is the evaluated state of a gate node.
type GateState string

const (
	GatePending GateState = "pending" // no approval received
	GateOpen    GateState = "open"
	GateClosed  GateState = "closed"
	GateInvalid GateState = "invalid"
)

// EvaluateGate evaluates the condition of a gate node. scope holds the
// siblings of the gate, used to look up the guarded job and its needs.
func EvaluateGate(ctx context.Context, eng expressions.Engine, gate *GraphNode, scope []*GraphNode) (GateState, error) {
	if gate.Kind != NodeKindGate {
		return "", fmt.Errorf("node %s is a %s, not a gate", gate.Name, gate.Kind)
	}
	if gate.Event == nil {
		return GatePending, nil
	}
	if gate.Gate == nil || gate.Gate.If == "" {
		return GateOpen, nil
	}

	ok, err := eng.EvaluateBool(ctx, gate.Gate.If, gateScope(gate, scope))
	if err != nil {
		return GateInvalid, fmt.Errorf("gate %s: %w", gate.Name, err)
	}
	if ok {
		return GateOpen, nil
	}
	return GateClosed, nil
}

func gateScope(gate *GraphNode, scope []*GraphNode) expressions.Scope {
	inputs := make(map[string]any)
	if gate.Gate != nil {
		for name, in := range gate.Gate.Inputs {
			if in.Default != nil {
				inputs[name] = in.Default
			}
		}
	}
	for name, v := range gate.Event.Inputs {
		inputs[name] = v
	}

	byName := make(map[string]*GraphNode, len(scope))
	for _, n := range scope {
		byName[n.Name] = n
	}
	needs := make(map[string]string)
	if child, ok := byName[gate.GateChild]; ok {
		for _, dep := range child.DependsOn {
			status := ""
			if n, ok := byName[dep]; ok && n.Run != nil {
				status = string(n.Run.Status)
			}
			needs[dep] = status
		}
	}
	return expressions.Scope{Gate: inputs, Needs: needs}
}

// EvaluateGates sets the gate state of every gate vertex in g and its
// sub-graphs. Invalid conditions mark the gate GateInvalid; their errors
// are joined.
func EvaluateGates(ctx context.Context, eng expressions.Engine, g *Graph) error {
	scope := make([]*GraphNode, 0, len(g.Vertices))
	for _, v := range g.Vertices {
		if v.Node != nil {
			scope = append(scope, v.Node)
		}
	}

	var errs []error
	for _, v := range g.Vertices {
		if v.Sub != nil {
			if err := EvaluateGates(ctx, eng, v.Sub); err != nil {
				errs = append(errs, err)
			}
		}
		if v.Node == nil || v.Node.Kind != NodeKindGate {
			continue
		}
		state, err := EvaluateGate(ctx, eng, v.Node, scope)
		v.Gate = state
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
