// Package layouttest provides a deterministic layout engine for tests.
package layouttest

import (
	"context"

	"github.com/rendis/wfgraph/internal/layout"
)

// Engine places nodes on a single line in registration order, Gap pixels
// apart, along the rank direction.
type Engine struct {
	*layout.Registry
	Direction layout.Direction
	Gap       float64

	Clears  int
	Layouts int
	Err     error // returned by Layout when set
}

// New returns an engine with the default shapes registered.
func New(dir layout.Direction) *Engine {
	e := &Engine{Registry: layout.NewRegistry(), Direction: dir, Gap: 40}
	layout.RegisterDefaults(e)
	return e
}

// Factory returns a factory recording every engine it creates.
func Factory(created *[]*Engine) layout.EngineFactory {
	return func(dir layout.Direction) layout.Engine {
		e := New(dir)
		if created != nil {
			*created = append(*created, e)
		}
		return e
	}
}

// Clear counts the call and drops nodes and edges.
func (e *Engine) Clear() {
	e.Clears++
	e.Registry.Clear()
}

// Layout places the registered nodes.
func (e *Engine) Layout(context.Context) (*layout.Result, error) {
	e.Layouts++
	if e.Err != nil {
		return nil, e.Err
	}

	res := &layout.Result{Nodes: make(map[string]layout.NodePlacement, len(e.Nodes))}
	if len(e.Nodes) == 0 {
		return res, nil
	}

	cross := 0.0
	for _, n := range e.Nodes {
		if e.Direction == layout.Vertical {
			cross = max(cross, n.Width)
		} else {
			cross = max(cross, n.Height)
		}
	}

	cursor := 0.0
	for _, n := range e.Nodes {
		box := layout.Rect{Width: n.Width, Height: n.Height}
		if e.Direction == layout.Vertical {
			box.X, box.Y = cross/2, cursor+n.Height/2
			cursor += n.Height + e.Gap
		} else {
			box.X, box.Y = cursor+n.Width/2, cross/2
			cursor += n.Width + e.Gap
		}
		res.Nodes[n.ID] = layout.NodePlacement{ID: n.ID, Box: box, Shape: n.Shape}
	}

	if e.Direction == layout.Vertical {
		res.Width, res.Height = cross, cursor-e.Gap
	} else {
		res.Width, res.Height = cursor-e.Gap, cross
	}
	res.Edges = e.RouteEdges(res.Nodes)
	return res, nil
}

var _ layout.Engine = (*Engine)(nil)
