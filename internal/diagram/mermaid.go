package diagram

import (
	"fmt"
	"strings"
)

// MermaidOptions controls RenderMermaid output.
type MermaidOptions struct {
	Title    string
	Vertical bool
}

// RenderMermaid renders a built graph as a Mermaid flowchart. Stage
// sub-graphs become nested Mermaid subgraphs.
func RenderMermaid(g *Graph, opts MermaidOptions) string {
	var b strings.Builder

	if opts.Vertical {
		b.WriteString("graph TD\n")
	} else {
		b.WriteString("graph LR\n")
	}
	if opts.Title != "" {
		b.WriteString(fmt.Sprintf("    %%%% %s\n", opts.Title))
	}

	var classes []string
	writeMermaidScope(&b, g, "", "    ", &classes)

	b.WriteString("\n")
	b.WriteString("    classDef success fill:#2d6a2d,stroke:#1a4a1a,color:#fff\n")
	b.WriteString("    classDef fail fill:#8b1a1a,stroke:#5c0e0e,color:#fff\n")
	b.WriteString("    classDef inactive fill:#6b6b6b,stroke:#4a4a4a,color:#fff\n")
	for _, line := range classes {
		b.WriteString("    " + line + "\n")
	}
	return b.String()
}

func writeMermaidScope(b *strings.Builder, g *Graph, scope, indent string, classes *[]string) {
	for _, v := range g.Vertices {
		id := mermaidSafeID(scope + v.Key)
		if v.Sub != nil {
			b.WriteString(fmt.Sprintf("%ssubgraph %s[%q]\n", indent, id, v.Name()))
			writeMermaidScope(b, v.Sub, scope+v.Key+"__", indent+"    ", classes)
			b.WriteString(indent + "end\n")
		} else {
			b.WriteString(indent + mermaidNodeDef(id, v) + "\n")
		}
		if cls := mermaidStatusClass(v); cls != "" {
			*classes = append(*classes, fmt.Sprintf("class %s %s", id, cls))
		}
	}
	for _, e := range g.Edges {
		b.WriteString(fmt.Sprintf("%s%s --> %s\n", indent,
			mermaidSafeID(scope+e.From), mermaidSafeID(scope+e.To)))
	}
}

// mermaidNodeDef returns a Mermaid node definition with a shape per kind.
func mermaidNodeDef(id string, v *Vertex) string {
	return MatchVertex(v, VertexHandlers[string]{
		Node: func(v *Vertex) string {
			label := v.Node.Name
			return Match(v.Node, KindHandlers[string]{
				Job:   func(*GraphNode) string { return fmt.Sprintf("%s[%q]", id, label) },
				Stage: func(*GraphNode) string { return fmt.Sprintf("%s[[%q]]", id, label) },
				Gate: func(n *GraphNode) string {
					return fmt.Sprintf("%s{{%q}}", id, n.GateName)
				},
			})
		},
		Fork: func(*Vertex) string { return fmt.Sprintf("%s((\" \"))", id) },
		Join: func(*Vertex) string { return fmt.Sprintf("%s((\" \"))", id) },
	})
}

// mermaidSafeID converts a vertex key to a Mermaid-safe identifier.
func mermaidSafeID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", " ", "_", ",", "_", "%", "_", ":", "_")
	return r.Replace(id)
}

func mermaidStatusClass(v *Vertex) string {
	switch ColorClass(v.Status) {
	case ColorSuccess:
		return "success"
	case ColorFail:
		return "fail"
	case ColorInactive:
		return "inactive"
	default:
		return ""
	}
}
