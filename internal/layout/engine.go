package layout

import (
	"context"
	"math"

	"github.com/rendis/wfgraph/pkg/schema"
)

// NodeSpec is a node handed to an Engine.
type NodeSpec struct {
	ID      string
	Shape   string
	Width   float64
	Height  float64
	Label   string
	Classes []string
}

// EdgeSpec is an edge handed to an Engine.
type EdgeSpec struct {
	From    string
	To      string
	Arrow   string
	Style   string
	Classes []string
}

// NodePlacement is a laid-out node.
type NodePlacement struct {
	ID    string
	Box   Rect
	Shape string
}

// EdgePlacement is a laid-out edge, from the source boundary to the target
// boundary.
type EdgePlacement struct {
	From, To string
	Points   []Point
	Arrow    string
}

// Result is the output of a layout pass.
type Result struct {
	Width, Height float64
	Nodes         map[string]NodePlacement
	Edges         []EdgePlacement
}

// Engine is a directed-graph layout engine.
type Engine interface {
	RegisterShape(name string, s Shape)
	RegisterArrow(name string, a Arrow)
	RegisterNode(n NodeSpec) error
	RegisterEdge(e EdgeSpec) error
	// Clear drops every registered node and edge; shapes and arrows stay.
	Clear()
	Layout(ctx context.Context) (*Result, error)
}

// EngineFactory creates an engine for one drawing surface.
type EngineFactory func(dir Direction) Engine

// Registry holds the registrations shared by engine implementations.
type Registry struct {
	Shapes map[string]Shape
	Arrows map[string]Arrow
	Nodes  []NodeSpec
	Edges  []EdgeSpec
	index  map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		Shapes: make(map[string]Shape),
		Arrows: make(map[string]Arrow),
		index:  make(map[string]int),
	}
}

func (r *Registry) RegisterShape(name string, s Shape) { r.Shapes[name] = s }

func (r *Registry) RegisterArrow(name string, a Arrow) { r.Arrows[name] = a }

// RegisterNode validates and records n.
func (r *Registry) RegisterNode(n NodeSpec) error {
	if n.ID == "" {
		return layoutError("node without id")
	}
	if _, dup := r.index[n.ID]; dup {
		return layoutError("duplicate node %s", n.ID).WithNode(n.ID)
	}
	if _, ok := r.Shapes[n.Shape]; !ok {
		return layoutError("unknown shape %q", n.Shape).WithNode(n.ID)
	}
	if !validSize(n.Width) || !validSize(n.Height) {
		return layoutError("invalid size %gx%g", n.Width, n.Height).WithNode(n.ID)
	}
	r.index[n.ID] = len(r.Nodes)
	r.Nodes = append(r.Nodes, n)
	return nil
}

// RegisterEdge records e; both endpoints must be registered.
func (r *Registry) RegisterEdge(e EdgeSpec) error {
	for _, id := range []string{e.From, e.To} {
		if _, ok := r.index[id]; !ok {
			return layoutError("edge %s -> %s: unknown node %s", e.From, e.To, id)
		}
	}
	if e.Arrow != "" {
		if _, ok := r.Arrows[e.Arrow]; !ok {
			return layoutError("edge %s -> %s: unknown arrow %q", e.From, e.To, e.Arrow)
		}
	}
	r.Edges = append(r.Edges, e)
	return nil
}

// Clear drops nodes and edges.
func (r *Registry) Clear() {
	r.Nodes = nil
	r.Edges = nil
	r.index = make(map[string]int)
}

// Node returns a registered node.
func (r *Registry) Node(id string) (NodeSpec, bool) {
	i, ok := r.index[id]
	if !ok {
		return NodeSpec{}, false
	}
	return r.Nodes[i], true
}

// RouteEdges clips straight edges between the placed nodes with their
// registered shapes.
func (r *Registry) RouteEdges(nodes map[string]NodePlacement) []EdgePlacement {
	out := make([]EdgePlacement, 0, len(r.Edges))
	for _, e := range r.Edges {
		from, okFrom := nodes[e.From]
		to, okTo := nodes[e.To]
		if !okFrom || !okTo {
			continue
		}
		start := r.Shapes[from.Shape].Intersect(from.Box, Point{X: to.Box.X, Y: to.Box.Y})
		end := r.Shapes[to.Shape].Intersect(to.Box, Point{X: from.Box.X, Y: from.Box.Y})
		out = append(out, EdgePlacement{From: e.From, To: e.To, Points: []Point{start, end}, Arrow: e.Arrow})
	}
	return out
}

func validSize(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func layoutError(format string, args ...any) *schema.Error {
	return schema.NewErrorf(schema.ErrCodeLayout, format, args...)
}
