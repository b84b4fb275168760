package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/wfgraph/internal/diagram"
)

func testScene(t *testing.T) *Scene {
	t.Helper()
	job := func(name string, needs ...string) *diagram.GraphNode {
		return &diagram.GraphNode{Name: name, Kind: diagram.NodeKindJob, DependsOn: needs}
	}
	g := diagram.BuildGraph([]*diagram.GraphNode{job("a"), job("b", "a"), job("c", "a")})

	res := &Result{Width: 300, Height: 100, Nodes: map[string]NodePlacement{}}
	for i, v := range g.Vertices {
		res.Nodes[v.Key] = NodePlacement{ID: v.Key, Box: Rect{X: float64(i) * 100, Y: 50, Width: 80, Height: 40}}
	}
	return newScene(g, res)
}

func TestScene_HighlightAndSelect(t *testing.T) {
	s := testScene(t)

	assert.True(t, s.Highlight("node-a", true))
	assert.False(t, s.Highlight("node-ghost", true))
	a, _ := s.Node("node-a")
	assert.True(t, a.Highlighted)

	assert.Equal(t, 1, s.HighlightTagged("b", true))
	assert.Equal(t, 3, s.HighlightTagged("a", true))
	assert.True(t, s.Select("node-b"))
	assert.True(t, s.Select("node-c"))
	assert.Equal(t, []string{"node-b", "node-c"}, s.Selected())

	s.SelectNone()
	assert.Empty(t, s.Selected())
}

func TestScene_At(t *testing.T) {
	s := testScene(t)
	n, ok := s.At(Point{X: 110, Y: 60})
	require.True(t, ok)
	assert.Equal(t, "node-b", n.Key)

	_, ok = s.At(Point{X: 50, Y: 50})
	assert.False(t, ok)
}
