package layout

import (
	"bytes"
	"context"
	"testing"

	"github.com/goccy/go-graphviz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerChain(t *testing.T, e *GraphvizEngine, shape string) {
	t.Helper()
	require.NoError(t, e.RegisterNode(NodeSpec{ID: "node-a", Shape: shape, Width: 180, Height: 60, Label: "a"}))
	require.NoError(t, e.RegisterNode(NodeSpec{ID: "node-b", Shape: shape, Width: 180, Height: 60, Label: "b"}))
	require.NoError(t, e.RegisterEdge(EdgeSpec{From: "node-a", To: "node-b", Arrow: ArrowDefault}))
}

func TestGraphvizEngine_Horizontal(t *testing.T) {
	e := NewGraphvizEngine(Horizontal)
	registerChain(t, e, ShapeRectH)

	res, err := e.Layout(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Nodes, 2)

	a, b := res.Nodes["node-a"], res.Nodes["node-b"]
	assert.Less(t, a.Box.X, b.Box.X)
	assert.InDelta(t, a.Box.Y, b.Box.Y, 1)
	assert.Equal(t, 180.0, a.Box.Width)
	assert.Greater(t, res.Width, 360.0)

	require.Len(t, res.Edges, 1)
	assert.InDelta(t, a.Box.X+90, res.Edges[0].Points[0].X, 1e-9)
	assert.InDelta(t, b.Box.X-90, res.Edges[0].Points[1].X, 1e-9)
}

func TestGraphvizEngine_Vertical(t *testing.T) {
	e := NewGraphvizEngine(Vertical)
	registerChain(t, e, ShapeRectV)

	res, err := e.Layout(context.Background())
	require.NoError(t, err)

	a, b := res.Nodes["node-a"], res.Nodes["node-b"]
	assert.Less(t, a.Box.Y, b.Box.Y, "ranks grow downwards")
	assert.InDelta(t, a.Box.X, b.Box.X, 1)
	assert.Greater(t, res.Height, 120.0)
}

func TestGraphvizEngine_Empty(t *testing.T) {
	res, err := NewGraphvizEngine(Horizontal).Layout(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Nodes)
	assert.Zero(t, res.Width)
}

func TestGraphvizEngine_RenderSVG(t *testing.T) {
	e := NewGraphvizEngine(Horizontal)
	assert.Error(t, e.Render(context.Background(), graphviz.SVG, &bytes.Buffer{}))

	registerChain(t, e, ShapeRectH)
	var buf bytes.Buffer
	require.NoError(t, e.Render(context.Background(), graphviz.SVG, &buf))
	assert.Contains(t, buf.String(), "<svg")
}

func TestParseBox(t *testing.T) {
	bb, err := parseBox(`"0,0,416,\` + "\n" + `60"`)
	require.NoError(t, err)
	assert.Equal(t, [4]float64{0, 0, 416, 60}, bb)

	_, err = parseBox(`"1,2"`)
	assert.Error(t, err)

	p, err := parsePoint(`"99,30"`)
	require.NoError(t, err)
	assert.Equal(t, Point{X: 99, Y: 30}, p)
}

func TestGraphvizEngine_RenderWithStages(t *testing.T) {
	top := NewGraphvizEngine(Horizontal)
	require.NoError(t, top.RegisterNode(NodeSpec{ID: "node-build", Shape: ShapeRectH, Width: 300, Height: 200, Label: "build"}))
	require.NoError(t, top.RegisterNode(NodeSpec{ID: "node-deploy", Shape: ShapeRectH, Width: 300, Height: 200, Label: "deploy"}))
	require.NoError(t, top.RegisterEdge(EdgeSpec{From: "node-build", To: "node-deploy", Arrow: ArrowDefault}))

	build := NewGraphvizEngine(Horizontal)
	require.NoError(t, build.RegisterNode(NodeSpec{ID: "node-compile", Shape: ShapeRectH, Width: 180, Height: 60, Label: "compile"}))
	require.NoError(t, build.RegisterNode(NodeSpec{ID: "node-package", Shape: ShapeRectH, Width: 180, Height: 60, Label: "package"}))
	require.NoError(t, build.RegisterEdge(EdgeSpec{From: "node-compile", To: "node-package", Arrow: ArrowDefault}))

	var buf bytes.Buffer
	err := top.RenderWithStages(context.Background(), graphviz.SVG, &buf, map[string]*GraphvizEngine{"node-build": build})
	require.NoError(t, err)

	svg := buf.String()
	assert.Contains(t, svg, "cluster_n0")
	assert.Contains(t, svg, ">compile<")
	assert.Contains(t, svg, ">package<")
	assert.Contains(t, svg, ">deploy<")
	assert.NotContains(t, svg, "cluster_n1", "stages without content stay plain nodes")
}
