package diagram

// BuildGraph runs the synthesis and status passes over one scope and,
// recursively, over every stage sub-graph. Each scope gets its own Graph.
// BuildGraph does not mutate nodes.
func BuildGraph(nodes []*GraphNode) *Graph {
	vertices := make([]*Vertex, 0, len(nodes))
	for _, n := range nodes {
		v := &Vertex{Key: NodeKey(n.Name), Kind: VertexNode, Node: n}
		if n.Kind == NodeKindStage && len(n.SubGraph) > 0 {
			v.Sub = BuildGraph(n.SubGraph)
		}
		vertices = append(vertices, v)
	}

	g := Synthesize(vertices, RawEdges(nodes))
	ApplyStatus(g)
	return g
}

// RawEdges derives the dependency edges of one scope: needs point from the
// dependency to the dependent and a gate points to the job it guards.
// References to names outside the scope are kept and dropped by Synthesize.
func RawEdges(nodes []*GraphNode) []RawEdge {
	var edges []RawEdge
	for _, n := range nodes {
		edges = append(edges, Match(n, KindHandlers[[]RawEdge]{
			Job:   needsEdges,
			Stage: needsEdges,
			Gate: func(n *GraphNode) []RawEdge {
				return []RawEdge{{From: n.Name, To: n.GateChild}}
			},
		})...)
	}
	return edges
}

func needsEdges(n *GraphNode) []RawEdge {
	out := make([]RawEdge, 0, len(n.DependsOn))
	for _, dep := range n.DependsOn {
		out = append(out, RawEdge{From: dep, To: n.Name})
	}
	return out
}

// Dangling returns the dependencies of nodes that name no sibling.
func Dangling(nodes []*GraphNode) map[string][]string {
	names := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		names[n.Name] = struct{}{}
	}
	out := make(map[string][]string)
	for _, n := range nodes {
		for _, dep := range n.DependsOn {
			if _, ok := names[dep]; !ok {
				out[n.Name] = append(out[n.Name], dep)
			}
		}
		for k, v := range Dangling(n.SubGraph) {
			out[k] = v
		}
	}
	return out
}
