package diagram

import (
	"fmt"
	"strings"

	"github.com/rendis/wfgraph/internal/matrix"
	"github.com/rendis/wfgraph/pkg/schema"
)

// statusTag returns a short ASCII indicator for a status.
func statusTag(status schema.Status) string {
	switch status {
	case schema.StatusSuccess:
		return "[OK]"
	case schema.StatusFail:
		return "[FAIL]"
	case schema.StatusBuilding:
		return "[RUN]"
	case schema.StatusWaiting, schema.StatusPending, schema.StatusScheduling:
		return "[WAIT]"
	case schema.StatusSkipped:
		return "[SKIP]"
	case schema.StatusStopped:
		return "[STOP]"
	case schema.StatusDisabled, schema.StatusNeverBuilt:
		return "[OFF]"
	default:
		return ""
	}
}

// Levels groups vertex keys by rank: a vertex sits one level below its
// deepest parent. Vertices on a cycle land on the last level.
func Levels(g *Graph) [][]string {
	indeg := make(map[string]int, len(g.Vertices))
	out := make(map[string][]string)
	for _, e := range g.Edges {
		indeg[e.To]++
		out[e.From] = append(out[e.From], e.To)
	}

	rank := make(map[string]int, len(g.Vertices))
	var queue []string
	for _, v := range g.Vertices {
		if indeg[v.Key] == 0 {
			queue = append(queue, v.Key)
		}
	}
	done := 0
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		done++
		for _, to := range out[k] {
			if rank[k]+1 > rank[to] {
				rank[to] = rank[k] + 1
			}
			indeg[to]--
			if indeg[to] == 0 {
				queue = append(queue, to)
			}
		}
	}

	maxRank := 0
	for _, r := range rank {
		maxRank = max(maxRank, r)
	}
	if done < len(g.Vertices) {
		maxRank++
	}
	levels := make([][]string, maxRank+1)
	for _, v := range g.Vertices {
		r := rank[v.Key]
		if indeg[v.Key] > 0 {
			r = maxRank
		}
		levels[r] = append(levels[r], v.Key)
	}
	return levels
}

// RenderASCII renders a built graph level by level with box-drawing
// characters. Stage sub-graphs are listed after the main graph.
func RenderASCII(g *Graph, title string) string {
	var b strings.Builder

	if title != "" {
		b.WriteString(fmt.Sprintf("=== %s ===\n\n", title))
	}

	levels := Levels(g)
	for levelIdx, level := range levels {
		boxes := make([]asciiBox, 0, len(level))
		for _, key := range level {
			if v, ok := g.Vertex(key); ok {
				boxes = append(boxes, makeBox(v))
			}
		}
		renderBoxRow(&b, boxes)
		if levelIdx < len(levels)-1 {
			renderConnector(&b, len(boxes))
		}
	}

	for _, v := range g.Vertices {
		if v.Sub != nil {
			b.WriteString(fmt.Sprintf("\n--- stage %s ---\n", v.Name()))
			renderSubGraph(&b, v.Sub)
		}
	}
	return b.String()
}

// asciiBox holds the rendered lines of a single box.
type asciiBox struct {
	lines []string
	width int
}

func makeBox(v *Vertex) asciiBox {
	contentLines := []string{boxLabel(v)}
	if tag := statusTag(v.Status); tag != "" {
		contentLines = append(contentLines, tag)
	}
	if v.Node != nil {
		if v.Node.Matrix != nil {
			contentLines = append(contentLines, matrix.Key(v.Node.Matrix))
		}
		if d := runDuration(v.Node.Run); d != "" {
			contentLines = append(contentLines, d)
		}
		if v.Gate != "" {
			contentLines = append(contentLines, "gate "+string(v.Gate))
		}
	}

	maxLen := 0
	for _, line := range contentLines {
		maxLen = max(maxLen, len([]rune(line)))
	}
	width := maxLen + 4

	lines := make([]string, 0, len(contentLines)+2)
	lines = append(lines, "┌"+strings.Repeat("─", width-2)+"┐")
	for _, content := range contentLines {
		padded := content + strings.Repeat(" ", maxLen-len([]rune(content)))
		lines = append(lines, "│ "+padded+" │")
	}
	lines = append(lines, "└"+strings.Repeat("─", width-2)+"┘")
	return asciiBox{lines: lines, width: width}
}

func boxLabel(v *Vertex) string {
	return MatchVertex(v, VertexHandlers[string]{
		Node: func(v *Vertex) string {
			return Match(v.Node, KindHandlers[string]{
				Job:   func(n *GraphNode) string { return n.Name },
				Stage: func(n *GraphNode) string { return "[" + n.Name + "]" },
				Gate:  func(n *GraphNode) string { return "gate " + n.GateName },
			})
		},
		Fork: func(*Vertex) string { return "fork" },
		Join: func(*Vertex) string { return "join" },
	})
}

func runDuration(run *schema.RunJob) string {
	if run == nil || run.Started == nil || run.Ended == nil {
		return ""
	}
	return run.Ended.Sub(*run.Started).String()
}

// renderBoxRow writes boxes side by side.
func renderBoxRow(b *strings.Builder, boxes []asciiBox) {
	if len(boxes) == 0 {
		return
	}
	maxHeight := 0
	for _, box := range boxes {
		maxHeight = max(maxHeight, len(box.lines))
	}
	for row := 0; row < maxHeight; row++ {
		for i, box := range boxes {
			if i > 0 {
				b.WriteString("  ")
			}
			if row < len(box.lines) {
				b.WriteString(box.lines[row])
			} else {
				b.WriteString(strings.Repeat(" ", box.width))
			}
		}
		b.WriteByte('\n')
	}
}

func renderConnector(b *strings.Builder, boxCount int) {
	if boxCount == 0 {
		return
	}
	b.WriteString("       │\n")
	b.WriteString("       ▼\n")
}

// renderSubGraph lists the vertices and edges of a stage.
func renderSubGraph(b *strings.Builder, g *Graph) {
	for _, v := range g.Vertices {
		tag := ""
		if t := statusTag(v.Status); t != "" {
			tag = " " + t
		}
		b.WriteString(fmt.Sprintf("    %s%s\n", boxLabel(v), tag))
	}
	for _, e := range g.Edges {
		b.WriteString(fmt.Sprintf("    %s ─→ %s\n", e.From, e.To))
	}
}
