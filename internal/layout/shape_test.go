package layout

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/wfgraph/pkg/schema"
)

func TestShapes_Intersect(t *testing.T) {
	box := Rect{X: 100, Y: 50, Width: 180, Height: 60}

	assert.Equal(t, Point{X: 190, Y: 50}, rectH(box, Point{X: 400, Y: 0}))
	assert.Equal(t, Point{X: 10, Y: 50}, rectH(box, Point{X: 0, Y: 300}))
	assert.Equal(t, Point{X: 100, Y: 80}, rectV(box, Point{X: 0, Y: 300}))
	assert.Equal(t, Point{X: 100, Y: 20}, rectV(box, Point{X: 500, Y: 0}))

	c := Rect{X: 0, Y: 0, Width: 60, Height: 60}
	p := circle(c, Point{X: 30, Y: 40})
	assert.InDelta(t, 18, p.X, 1e-9)
	assert.InDelta(t, 24, p.Y, 1e-9)
	assert.Equal(t, Point{}, circle(c, Point{}))
}

func TestRectShape(t *testing.T) {
	assert.Equal(t, ShapeRectH, RectShape(Horizontal))
	assert.Equal(t, ShapeRectV, RectShape(Vertical))
}

func TestRegistry_RegisterNode(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	require.NoError(t, r.RegisterNode(NodeSpec{ID: "a", Shape: ShapeRectH, Width: 10, Height: 10}))

	tests := []struct {
		name string
		spec NodeSpec
	}{
		{"missing id", NodeSpec{Shape: ShapeRectH, Width: 1, Height: 1}},
		{"duplicate", NodeSpec{ID: "a", Shape: ShapeRectH, Width: 1, Height: 1}},
		{"unknown shape", NodeSpec{ID: "b", Shape: "hexagon", Width: 1, Height: 1}},
		{"zero width", NodeSpec{ID: "c", Shape: ShapeRectH, Height: 1}},
		{"negative height", NodeSpec{ID: "d", Shape: ShapeRectH, Width: 1, Height: -4}},
		{"infinite", NodeSpec{ID: "e", Shape: ShapeCircle, Width: math.Inf(1), Height: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.RegisterNode(tt.spec)
			require.Error(t, err)
			var se *schema.Error
			require.True(t, errors.As(err, &se))
			assert.Equal(t, schema.ErrCodeLayout, se.Code)
		})
	}
	assert.Len(t, r.Nodes, 1)
}

func TestRegistry_EdgesAndRouting(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)
	require.NoError(t, r.RegisterNode(NodeSpec{ID: "a", Shape: ShapeRectH, Width: 100, Height: 40}))
	require.NoError(t, r.RegisterNode(NodeSpec{ID: "b", Shape: ShapeRectH, Width: 100, Height: 40}))

	assert.Error(t, r.RegisterEdge(EdgeSpec{From: "a", To: "ghost"}))
	assert.Error(t, r.RegisterEdge(EdgeSpec{From: "a", To: "b", Arrow: "nope"}))
	require.NoError(t, r.RegisterEdge(EdgeSpec{From: "a", To: "b", Arrow: ArrowDefault}))

	edges := r.RouteEdges(map[string]NodePlacement{
		"a": {ID: "a", Box: Rect{X: 50, Y: 20, Width: 100, Height: 40}, Shape: ShapeRectH},
		"b": {ID: "b", Box: Rect{X: 250, Y: 20, Width: 100, Height: 40}, Shape: ShapeRectH},
	})
	require.Len(t, edges, 1)
	assert.Equal(t, []Point{{X: 100, Y: 20}, {X: 200, Y: 20}}, edges[0].Points)
	assert.Equal(t, ArrowDefault, edges[0].Arrow)

	r.Clear()
	assert.Empty(t, r.Nodes)
	assert.Empty(t, r.Edges)
	_, ok := r.Node("a")
	assert.False(t, ok)
	assert.Contains(t, r.Shapes, ShapeCircle, "shapes survive Clear")
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.MinScale = 2
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Direction = "diagonal"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.StageHeight = 0
	assert.Error(t, cfg.Validate())

	assert.Equal(t, Vertical, Horizontal.Toggle())
	assert.Equal(t, Horizontal, Vertical.Toggle())
}
