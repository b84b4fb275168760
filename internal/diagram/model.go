package diagram

import (
	"github.com/rendis/wfgraph/internal/matrix"
	"github.com/rendis/wfgraph/pkg/schema"
)

// NodeKind classifies a graph node before synthesis.
type NodeKind string

const (
	NodeKindJob   NodeKind = "job"
	NodeKindStage NodeKind = "stage"
	NodeKindGate  NodeKind = "gate"
)

// GraphNode is one visual unit produced by the translator.
type GraphNode struct {
	Name      string
	Kind      NodeKind
	DependsOn []string

	// Stage only.
	SubGraph []*GraphNode

	// Job only. JobID is the declared id, Name the matrix-derived one.
	JobID  string
	Job    *schema.Job
	Matrix matrix.Combination

	// Gate only.
	GateName  string
	GateChild string
	Gate      *schema.Gate

	Run   *schema.RunJob
	Event *schema.JobEvent
}

// KindHandlers is a handler set for Match. A nil handler yields the zero value.
type KindHandlers[T any] struct {
	Job   func(n *GraphNode) T
	Stage func(n *GraphNode) T
	Gate  func(n *GraphNode) T
}

// Match dispatches n to the handler of its kind.
func Match[T any](n *GraphNode, h KindHandlers[T]) T {
	var zero T
	var fn func(*GraphNode) T
	switch n.Kind {
	case NodeKindJob:
		fn = h.Job
	case NodeKindStage:
		fn = h.Stage
	case NodeKindGate:
		fn = h.Gate
	}
	if fn == nil {
		return zero
	}
	return fn(n)
}

// VertexKind classifies a vertex of a built graph.
type VertexKind string

const (
	VertexNode VertexKind = "node"
	VertexFork VertexKind = "fork"
	VertexJoin VertexKind = "join"
)

// Vertex is a node of a built graph: either a translated GraphNode or a
// synthesized fork/join.
type Vertex struct {
	Key    string
	Kind   VertexKind
	Node   *GraphNode // VertexNode only
	Group  *Group     // VertexFork and VertexJoin only
	Status schema.Status
	Gate   GateState // gate nodes only
	Sub    *Graph    // stage with a non-empty sub-graph
}

// Name returns the node name of a plain vertex, or the group key.
func (v *Vertex) Name() string {
	if v.Node != nil {
		return v.Node.Name
	}
	if v.Group != nil {
		return v.Group.Key
	}
	return ""
}

// Classes returns the names a fork/join stands for: its parents for a fork,
// its children for a join.
func (v *Vertex) Classes() []string {
	switch {
	case v.Kind == VertexFork && v.Group != nil:
		return v.Group.Parents
	case v.Kind == VertexJoin && v.Group != nil:
		return v.Group.Children
	case v.Node != nil:
		return []string{v.Node.Name}
	}
	return nil
}

// VertexHandlers is a handler set for MatchVertex.
type VertexHandlers[T any] struct {
	Node func(v *Vertex) T
	Fork func(v *Vertex) T
	Join func(v *Vertex) T
}

// MatchVertex dispatches v to the handler of its kind.
func MatchVertex[T any](v *Vertex, h VertexHandlers[T]) T {
	var zero T
	var fn func(*Vertex) T
	switch v.Kind {
	case VertexNode:
		fn = h.Node
	case VertexFork:
		fn = h.Fork
	case VertexJoin:
		fn = h.Join
	}
	if fn == nil {
		return zero
	}
	return fn(v)
}

// Edge is a directed arc between two vertex keys.
type Edge struct {
	From    string
	To      string
	Classes []string // node names and group keys, sorted
	Status  schema.Status
	Style   string
}

// HasClass reports whether the edge is tagged with class.
func (e *Edge) HasClass(class string) bool {
	for _, c := range e.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// Group is a fork or join aggregation. Key is the sorted names of the
// "many" side joined with ",".
type Group struct {
	Key      string
	Parents  []string
	Children []string
}

// Substitutions map a plain vertex key to the synthetic vertex that replaced
// its outgoing (Out) or incoming (In) side.
type Substitutions struct {
	Out map[string]string
	In  map[string]string
}

// Graph is the renderable result of one build pass over one scope.
type Graph struct {
	Vertices []*Vertex
	Edges    []*Edge
	Forks    []*Group
	Joins    []*Group
	Subs     Substitutions

	index map[string]*Vertex
}

// Vertex returns the vertex with the given key.
func (g *Graph) Vertex(key string) (*Vertex, bool) {
	v, ok := g.index[key]
	return v, ok
}

// Node returns the plain vertex of the named node.
func (g *Graph) Node(name string) (*Vertex, bool) {
	return g.Vertex(NodeKey(name))
}

// Len returns the number of vertices.
func (g *Graph) Len() int { return len(g.Vertices) }

// NodeKey is the vertex key of a translated node.
func NodeKey(name string) string { return "node-" + name }

// ForkKey is the vertex key of a fork group.
func ForkKey(group string) string { return "fork-" + group }

// JoinKey is the vertex key of a join group.
func JoinKey(group string) string { return "join-" + group }
