package diagram

import (
	"github.com/rendis/wfgraph/pkg/schema"
)

// --- Test fixture builders ---

func releaseWorkflow() *schema.Workflow {
	return &schema.Workflow{
		Name: "release",
		Stages: schema.StageList{
			{Name: "build"},
			{Name: "deploy", Needs: []string{"build"}},
		},
		Gates: map[string]schema.Gate{
			"approve": {
				If:     "${{ gate.ok }}",
				Inputs: map[string]schema.GateInput{"ok": {Type: "boolean", Default: false}},
			},
		},
		Jobs: schema.JobList{
			{ID: "compile", Stage: "build", Strategy: &schema.Strategy{Matrix: schema.Matrix{
				{Name: "os", Values: []string{"linux", "darwin"}},
			}}},
			{ID: "package", Stage: "build", Needs: []string{"compile"}},
			{ID: "ship", Stage: "deploy", Gate: "approve"},
			{ID: "notify"},
		},
	}
}

func releaseRuns() []schema.RunJob {
	return []schema.RunJob{
		{ID: "r1", JobID: "compile", Matrix: map[string]string{"os": "linux"}, Status: schema.StatusSuccess},
		{ID: "r2", JobID: "compile", Matrix: map[string]string{"os": "darwin"}, Status: schema.StatusFail},
		{ID: "r3", JobID: "package", Status: schema.StatusWaiting},
		{ID: "r4", JobID: "ghost", Status: schema.StatusSuccess},
	}
}

func jobNode(name string, needs ...string) *GraphNode {
	return &GraphNode{Name: name, Kind: NodeKindJob, JobID: name, DependsOn: needs}
}

func stageNode(name string, needs []string, sub ...*GraphNode) *GraphNode {
	return &GraphNode{Name: name, Kind: NodeKindStage, DependsOn: needs, SubGraph: sub}
}

func withRun(n *GraphNode, status schema.Status) *GraphNode {
	n.Run = &schema.RunJob{ID: "run-" + n.Name, JobID: n.Name, Status: status}
	return n
}

func plainVertices(names ...string) []*Vertex {
	out := make([]*Vertex, 0, len(names))
	for _, name := range names {
		out = append(out, &Vertex{Key: NodeKey(name), Kind: VertexNode, Node: jobNode(name)})
	}
	return out
}

func names(nodes []*GraphNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func edgePairs(g *Graph) [][2]string {
	out := make([][2]string, 0, len(g.Edges))
	for _, e := range g.Edges {
		out = append(out, [2]string{e.From, e.To})
	}
	return out
}
