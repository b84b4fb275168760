package layout

import (
	"github.com/rendis/wfgraph/internal/diagram"
)

// SceneNode is a drawn vertex.
type SceneNode struct {
	Key         string
	Vertex      *diagram.Vertex
	Box         Rect
	Shape       string
	Highlighted bool
	Selected    bool
}

// SceneEdge is a drawn edge.
type SceneEdge struct {
	Edge        *diagram.Edge
	Points      []Point
	Arrow       string
	Highlighted bool
}

// Scene is the drawn state of one graph: placed vertices and edges with
// their highlight and selection flags.
type Scene struct {
	Width, Height float64

	nodes []*SceneNode
	index map[string]*SceneNode
	edges []*SceneEdge
}

func newScene(g *diagram.Graph, res *Result) *Scene {
	s := &Scene{
		Width:  res.Width,
		Height: res.Height,
		index:  make(map[string]*SceneNode, len(g.Vertices)),
	}
	for _, v := range g.Vertices {
		p, ok := res.Nodes[v.Key]
		if !ok {
			continue
		}
		n := &SceneNode{Key: v.Key, Vertex: v, Box: p.Box, Shape: p.Shape}
		s.nodes = append(s.nodes, n)
		s.index[v.Key] = n
	}

	placed := make(map[[2]string]EdgePlacement, len(res.Edges))
	for _, ep := range res.Edges {
		placed[[2]string{ep.From, ep.To}] = ep
	}
	for _, e := range g.Edges {
		se := &SceneEdge{Edge: e}
		if ep, ok := placed[[2]string{e.From, e.To}]; ok {
			se.Points = ep.Points
			se.Arrow = ep.Arrow
		}
		s.edges = append(s.edges, se)
	}
	return s
}

// Nodes returns the drawn vertices in graph order.
func (s *Scene) Nodes() []*SceneNode { return s.nodes }

// Edges returns the drawn edges in graph order.
func (s *Scene) Edges() []*SceneEdge { return s.edges }

// Node returns the drawn vertex with the given key.
func (s *Scene) Node(key string) (*SceneNode, bool) {
	n, ok := s.index[key]
	return n, ok
}

// Highlight sets the highlight flag of a vertex. It reports whether the
// vertex exists.
func (s *Scene) Highlight(key string, on bool) bool {
	n, ok := s.index[key]
	if ok {
		n.Highlighted = on
	}
	return ok
}

// HighlightTagged sets the highlight flag of every edge tagged with class
// and returns how many edges matched.
func (s *Scene) HighlightTagged(class string, on bool) int {
	count := 0
	for _, e := range s.edges {
		if e.Edge.HasClass(class) {
			e.Highlighted = on
			count++
		}
	}
	return count
}

// Select marks a vertex selected. It reports whether the vertex exists.
func (s *Scene) Select(key string) bool {
	n, ok := s.index[key]
	if ok {
		n.Selected = true
	}
	return ok
}

// SelectNone clears every selection flag.
func (s *Scene) SelectNone() {
	for _, n := range s.nodes {
		n.Selected = false
	}
}

// Selected returns the keys of the selected vertices.
func (s *Scene) Selected() []string {
	var out []string
	for _, n := range s.nodes {
		if n.Selected {
			out = append(out, n.Key)
		}
	}
	return out
}

// At returns the topmost vertex containing the graph point p.
func (s *Scene) At(p Point) (*SceneNode, bool) {
	for i := len(s.nodes) - 1; i >= 0; i-- {
		if s.nodes[i].Box.Contains(p) {
			return s.nodes[i], true
		}
	}
	return nil, false
}
