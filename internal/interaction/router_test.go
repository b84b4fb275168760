package interaction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/wfgraph/internal/diagram"
	"github.com/rendis/wfgraph/internal/layout"
	"github.com/rendis/wfgraph/internal/layout/layouttest"
	"github.com/rendis/wfgraph/pkg/schema"
)

// recordingSurface remembers flag changes.
type recordingSurface struct {
	keys        map[string]bool
	highlighted map[string]bool
	tagged      map[string]bool
	selected    map[string]bool
}

func newRecordingSurface(keys ...string) *recordingSurface {
	s := &recordingSurface{
		keys:        map[string]bool{},
		highlighted: map[string]bool{},
		tagged:      map[string]bool{},
		selected:    map[string]bool{},
	}
	for _, k := range keys {
		s.keys[k] = true
	}
	return s
}

func (s *recordingSurface) Highlight(key string, on bool) bool {
	if !s.keys[key] {
		return false
	}
	s.highlighted[key] = on
	return true
}

func (s *recordingSurface) HighlightTagged(class string, on bool) int {
	s.tagged[class] = on
	return 1
}

func (s *recordingSurface) Select(key string) bool {
	if !s.keys[key] {
		return false
	}
	s.selected[key] = true
	return true
}

func (s *recordingSurface) SelectNone() {
	s.selected = map[string]bool{}
}

func job(name string, needs ...string) *diagram.GraphNode {
	return &diagram.GraphNode{Name: name, Kind: diagram.NodeKindJob, JobID: name, DependsOn: needs}
}

func TestRouter_HoverFollowsSubstitutes(t *testing.T) {
	s := newRecordingSurface("node-a", "node-b", "fork-b,c", "join-a,x")
	subs := diagram.Substitutions{
		Out: map[string]string{"node-a": "fork-b,c"},
		In:  map[string]string{"node-a": "join-a,x"},
	}
	r := NewRouter(s, subs)

	r.Hover("a", true)
	assert.True(t, s.highlighted["node-a"])
	assert.True(t, s.highlighted["fork-b,c"])
	assert.True(t, s.highlighted["join-a,x"])
	assert.True(t, s.tagged["a"])

	r.Hover("a", false)
	assert.False(t, s.highlighted["node-a"])
	assert.False(t, s.highlighted["fork-b,c"])
	assert.False(t, s.tagged["a"])

	r.Hover("b", true)
	assert.True(t, s.highlighted["node-b"])
	assert.False(t, s.highlighted["fork-b,c"], "b has no substitute")
}

func TestRouter_Click(t *testing.T) {
	s := newRecordingSurface("node-a", "node-b")
	r := NewRouter(s, diagram.Substitutions{})

	assert.True(t, r.Click("a"))
	assert.Equal(t, "a", r.Selected())

	assert.True(t, r.Click("b"))
	assert.Equal(t, map[string]bool{"node-b": true}, s.selected)

	assert.False(t, r.Click("absorbed"))
	assert.Empty(t, r.Selected())
	assert.Empty(t, s.selected)
}

func TestRouter_RebindDropsVanishedSelection(t *testing.T) {
	r := NewRouter(newRecordingSurface("node-a"), diagram.Substitutions{})
	r.Click("a")

	next := newRecordingSurface("node-b")
	r.Rebind(next, diagram.Substitutions{})
	assert.Empty(t, r.Selected())
	assert.Empty(t, next.selected)
}

func TestRouter_SelectionSurvivesStatusUpdate(t *testing.T) {
	ctx := context.Background()
	nodes := []*diagram.GraphNode{job("a"), job("b", "a"), job("c", "a")}
	d := layout.NewDriver(layout.DefaultConfig(), layouttest.Factory(nil), nil)

	g := diagram.BuildGraph(nodes)
	require.NoError(t, d.Draw(ctx, g))
	r := NewRouter(d.Scene(), g.Subs)
	require.True(t, r.Click("b"))

	nodes[1].Run = &schema.RunJob{JobID: "b", Status: schema.StatusSuccess}
	g = diagram.BuildGraph(nodes)
	require.NoError(t, d.Draw(ctx, g))
	r.Rebind(d.Scene(), g.Subs)

	assert.Equal(t, "b", r.Selected())
	assert.Equal(t, []string{"node-b"}, d.Scene().Selected())
	n, _ := d.Scene().Node("node-b")
	assert.Equal(t, schema.StatusSuccess, n.Vertex.Status)
}

func TestRouter_HoverOnScene(t *testing.T) {
	nodes := []*diagram.GraphNode{job("a"), job("b", "a"), job("c", "a")}
	d := layout.NewDriver(layout.DefaultConfig(), layouttest.Factory(nil), nil)
	g := diagram.BuildGraph(nodes)
	require.NoError(t, d.Draw(context.Background(), g))

	NewRouter(d.Scene(), g.Subs).Hover("a", true)

	fork, _ := d.Scene().Node("fork-b,c")
	assert.True(t, fork.Highlighted)
	for _, e := range d.Scene().Edges() {
		assert.True(t, e.Highlighted, "%s -> %s", e.Edge.From, e.Edge.To)
	}
}

func TestRouter_NilSurface(t *testing.T) {
	r := NewRouter(nil, diagram.Substitutions{})
	r.Hover("a", true)
	assert.False(t, r.Click("a"))
	r.Deselect()
}
