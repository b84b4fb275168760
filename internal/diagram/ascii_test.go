package diagram

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/wfgraph/pkg/schema"
)

func TestLevels(t *testing.T) {
	g := BuildGraph([]*GraphNode{jobNode("a"), jobNode("b", "a"), jobNode("c", "a", "b")})
	assert.Equal(t, [][]string{
		{"node-a"},
		{"fork-b,c"},
		{"node-b"},
		{"join-a,b"},
		{"node-c"},
	}, Levels(g))
}

func TestLevels_Cycle(t *testing.T) {
	g := Synthesize(plainVertices("a", "b", "c"), []RawEdge{{"a", "b"}, {"b", "a"}})
	levels := Levels(g)
	require.Len(t, levels, 2)
	assert.Equal(t, []string{"node-c"}, levels[0])
	assert.ElementsMatch(t, []string{"node-a", "node-b"}, levels[1])
}

func TestRenderASCII(t *testing.T) {
	nodes, exp := Translate(releaseWorkflow())
	BindRuns(nodes, releaseRuns(), exp)
	out := RenderASCII(BuildGraph(nodes), "release")

	assert.True(t, strings.HasPrefix(out, "=== release ===\n"))
	assert.Contains(t, out, "[build]")
	assert.Contains(t, out, "[FAIL]")
	assert.Contains(t, out, "--- stage build ---")
	assert.Contains(t, out, "    compile-linux [OK]")
	assert.Contains(t, out, "    package [WAIT]")
	assert.Contains(t, out, "--- stage deploy ---")
	assert.Contains(t, out, "    gate approve")
	assert.Contains(t, out, "node-gate-ship ─→ node-ship")
}

func TestMakeBox(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)
	n := jobNode("test-linux")
	n.Matrix = map[string]string{"os": "linux"}
	n.Run = &schema.RunJob{Status: schema.StatusSuccess, Started: &start, Ended: &end}

	box := makeBox(&Vertex{Key: NodeKey(n.Name), Kind: VertexNode, Node: n, Status: schema.StatusSuccess})

	joined := strings.Join(box.lines, "\n")
	assert.Contains(t, joined, "test-linux")
	assert.Contains(t, joined, "[OK]")
	assert.Contains(t, joined, "os:linux")
	assert.Contains(t, joined, "1m30s")
	assert.True(t, strings.HasPrefix(box.lines[0], "┌"))
}
