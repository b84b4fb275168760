package diagram

import "github.com/rendis/wfgraph/pkg/schema"

// ColorClass names, applied to vertices and edges.
const (
	ColorSuccess  = "color-success"
	ColorFail     = "color-fail"
	ColorInactive = "color-inactive"
)

// EdgeStyle is the style of an edge whose source has a status.
const EdgeStyle = "stroke-width: 2px;"

func severity(s schema.Status) int {
	switch s {
	case schema.StatusFail:
		return 4
	case schema.StatusWaiting, schema.StatusBuilding, schema.StatusPending, schema.StatusScheduling:
		return 3
	case schema.StatusDisabled, schema.StatusNeverBuilt, schema.StatusStopped, schema.StatusSkipped:
		return 2
	case schema.StatusSuccess:
		return 1
	default:
		return 0
	}
}

// Aggregate returns the most severe status: Fail, then any in-progress
// status, then inactive ones, then Success. Unknown and empty statuses are
// ignored; the first seen wins a tie. Returns "" when nothing is known.
func Aggregate(statuses []schema.Status) schema.Status {
	var best schema.Status
	bestRank := 0
	for _, s := range statuses {
		if r := severity(s); r > bestRank {
			best, bestRank = s, r
		}
	}
	return best
}

// ColorClass maps a status to its display class, or "" for no status.
func ColorClass(s schema.Status) string {
	switch severity(s) {
	case 0:
		return ""
	case 4:
		return ColorFail
	case 1:
		return ColorSuccess
	default:
		return ColorInactive
	}
}

// ApplyStatus computes vertex and edge statuses of g and its sub-graphs from
// the runs currently bound to the nodes. It can be called again after a
// rebind without rebuilding the topology.
func ApplyStatus(g *Graph) {
	for _, v := range g.Vertices {
		if v.Sub != nil {
			ApplyStatus(v.Sub)
		}
	}

	// Plain vertices precede forks and joins, so parents are resolved first.
	for _, v := range g.Vertices {
		v.Status = MatchVertex(v, VertexHandlers[schema.Status]{
			Node: nodeStatus,
			Fork: func(v *Vertex) schema.Status { return g.groupStatus(v.Group.Parents) },
			Join: func(v *Vertex) schema.Status { return g.groupStatus(v.Group.Parents) },
		})
	}

	for _, e := range g.Edges {
		e.Status, e.Style = "", ""
		if src, ok := g.Vertex(e.From); ok {
			e.Status = src.Status
		}
		if ColorClass(e.Status) != "" {
			e.Style = EdgeStyle
		}
	}
}

func nodeStatus(v *Vertex) schema.Status {
	return Match(v.Node, KindHandlers[schema.Status]{
		Job: func(n *GraphNode) schema.Status {
			if n.Run == nil {
				return ""
			}
			return n.Run.Status
		},
		Stage: func(*GraphNode) schema.Status {
			if v.Sub == nil {
				return ""
			}
			statuses := make([]schema.Status, 0, len(v.Sub.Vertices))
			for _, sv := range v.Sub.Vertices {
				if sv.Kind == VertexNode {
					statuses = append(statuses, sv.Status)
				}
			}
			return Aggregate(statuses)
		},
	})
}

func (g *Graph) groupStatus(names []string) schema.Status {
	statuses := make([]schema.Status, 0, len(names))
	for _, name := range names {
		if v, ok := g.Node(name); ok {
			statuses = append(statuses, v.Status)
		}
	}
	return Aggregate(statuses)
}
