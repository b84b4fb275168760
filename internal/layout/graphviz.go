package layout

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/awalterschulze/gographviz"
	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
)

// pointsPerInch converts pixel sizes to Graphviz inches. Graphviz reports
// positions in points, which map one to one onto pixels.
const pointsPerInch = 72.0

// dotFormat renders the laid-out graph back as DOT with pos/bb attributes.
const dotFormat graphviz.Format = "dot"

// GraphvizEngine lays graphs out with the Graphviz dot algorithm.
// Registered nodes are renamed n0, n1, ... so ids never need quoting.
type GraphvizEngine struct {
	*Registry
	direction Direction
}

// NewGraphvizEngine creates an engine with the default shapes registered.
func NewGraphvizEngine(dir Direction) *GraphvizEngine {
	e := &GraphvizEngine{Registry: NewRegistry(), direction: dir}
	RegisterDefaults(e)
	return e
}

// NewGraphvizFactory is an EngineFactory for GraphvizEngine.
func NewGraphvizFactory() EngineFactory {
	return func(dir Direction) Engine { return NewGraphvizEngine(dir) }
}

// Layout runs dot and reads node positions back from its DOT output.
func (e *GraphvizEngine) Layout(ctx context.Context) (*Result, error) {
	if len(e.Nodes) == 0 {
		return &Result{Nodes: map[string]NodePlacement{}}, nil
	}

	var buf bytes.Buffer
	if err := e.render(ctx, dotFormat, &buf, nil); err != nil {
		return nil, err
	}

	parsed, err := gographviz.Read(buf.Bytes())
	if err != nil {
		return nil, layoutError("parse layout output: %s", err.Error()).WithCause(err)
	}

	bb, err := parseBox(parsed.Attrs[gographviz.BB])
	if err != nil {
		return nil, layoutError("graph bounding box: %s", err.Error()).WithCause(err)
	}
	res := &Result{
		Width:  bb[2] - bb[0],
		Height: bb[3] - bb[1],
		Nodes:  make(map[string]NodePlacement, len(e.Nodes)),
	}

	for i, spec := range e.Nodes {
		gn, ok := parsed.Nodes.Lookup[nodeName(i)]
		if !ok {
			return nil, layoutError("node %s missing from layout output", spec.ID).WithNode(spec.ID)
		}
		pos, err := parsePoint(gn.Attrs[gographviz.Pos])
		if err != nil {
			return nil, layoutError("position: %s", err.Error()).WithNode(spec.ID).WithCause(err)
		}
		res.Nodes[spec.ID] = NodePlacement{
			ID: spec.ID,
			Box: Rect{
				X:      pos.X - bb[0],
				Y:      bb[3] - pos.Y, // Graphviz y grows upwards
				Width:  spec.Width,
				Height: spec.Height,
			},
			Shape: spec.Shape,
		}
	}
	res.Edges = e.RouteEdges(res.Nodes)
	return res, nil
}

// Render writes the registered graph in a Graphviz output format such as
// graphviz.SVG or graphviz.PNG.
func (e *GraphvizEngine) Render(ctx context.Context, format graphviz.Format, w io.Writer) error {
	return e.RenderWithStages(ctx, format, w, nil)
}

// RenderWithStages is Render with the content of stage nodes drawn inside
// them. stages maps a registered node id to the engine holding its
// sub-graph; each such node becomes a dashed cluster labelled like the node,
// and edges touching it are clipped at the cluster border.
func (e *GraphvizEngine) RenderWithStages(ctx context.Context, format graphviz.Format, w io.Writer, stages map[string]*GraphvizEngine) error {
	if len(e.Nodes) == 0 {
		return layoutError("nothing to render")
	}
	return e.render(ctx, format, w, stages)
}

func (e *GraphvizEngine) render(ctx context.Context, format graphviz.Format, w io.Writer, stages map[string]*GraphvizEngine) error {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return layoutError("create graphviz: %s", err.Error()).WithCause(err)
	}
	defer gv.Close()

	gv.SetLayout(graphviz.DOT)

	graph, err := gv.Graph()
	if err != nil {
		return layoutError("create graph: %s", err.Error()).WithCause(err)
	}
	defer graph.Close()

	if e.direction == Vertical {
		graph.SetRankDir(cgraph.TBRank)
	} else {
		graph.SetRankDir(cgraph.LRRank)
	}

	gvNodes := make(map[string]*cgraph.Node, len(e.Nodes))
	clusters := make(map[string]string)
	for i, spec := range e.Nodes {
		if sub, ok := stages[spec.ID]; ok && len(sub.Nodes) > 0 {
			anchor, err := createCluster(graph, nodeName(i), spec, sub)
			if err != nil {
				return err
			}
			gvNodes[spec.ID] = anchor
			clusters[spec.ID] = clusterName(nodeName(i))
			continue
		}
		n, err := graph.CreateNodeByName(nodeName(i))
		if err != nil {
			return layoutError("create node %s: %s", spec.ID, err.Error()).WithNode(spec.ID).WithCause(err)
		}
		applyShape(n, spec)
		gvNodes[spec.ID] = n
	}
	if len(clusters) > 0 {
		graph.SetCompound(true)
	}

	for _, edge := range e.Edges {
		ge, err := graph.CreateEdgeByName("", gvNodes[edge.From], gvNodes[edge.To])
		if err != nil {
			return layoutError("create edge %s -> %s: %s", edge.From, edge.To, err.Error()).WithCause(err)
		}
		if c, ok := clusters[edge.From]; ok {
			ge.SetLogicalTail(c)
		}
		if c, ok := clusters[edge.To]; ok {
			ge.SetLogicalHead(c)
		}
	}

	if err := gv.Render(ctx, graph, format, w); err != nil {
		return layoutError("render %s: %s", format, err.Error()).WithCause(err)
	}
	return nil
}

// createCluster draws sub as a dashed cluster and returns the point node
// edges of the stage attach to.
func createCluster(graph *cgraph.Graph, name string, spec NodeSpec, sub *GraphvizEngine) (*cgraph.Node, error) {
	cluster, err := graph.CreateSubGraphByName(clusterName(name))
	if err != nil {
		return nil, layoutError("create cluster %s: %s", spec.ID, err.Error()).WithNode(spec.ID).WithCause(err)
	}
	cluster.SetLabel(spec.Label)
	cluster.SetStyle(cgraph.DashedGraphStyle)

	anchor, err := cluster.CreateNodeByName(name)
	if err != nil {
		return nil, layoutError("create node %s: %s", spec.ID, err.Error()).WithNode(spec.ID).WithCause(err)
	}
	anchor.SetShape(cgraph.PointShape)
	anchor.SetLabel("")

	inner := make(map[string]*cgraph.Node, len(sub.Nodes))
	for j, child := range sub.Nodes {
		n, err := cluster.CreateNodeByName(name + "_" + nodeName(j))
		if err != nil {
			return nil, layoutError("create node %s: %s", child.ID, err.Error()).WithNode(child.ID).WithCause(err)
		}
		applyShape(n, child)
		inner[child.ID] = n
	}
	for _, edge := range sub.Edges {
		if _, err := cluster.CreateEdgeByName("", inner[edge.From], inner[edge.To]); err != nil {
			return nil, layoutError("create edge %s -> %s: %s", edge.From, edge.To, err.Error()).WithCause(err)
		}
	}
	return anchor, nil
}

func clusterName(name string) string { return "cluster_" + name }

func applyShape(n *cgraph.Node, spec NodeSpec) {
	switch spec.Shape {
	case ShapeCircle:
		n.SetShape(cgraph.CircleShape)
	default:
		n.SetShape(cgraph.BoxShape)
	}
	n.SetWidth(spec.Width / pointsPerInch)
	n.SetHeight(spec.Height / pointsPerInch)
	n.SetLabel(spec.Label)
}

func nodeName(i int) string { return "n" + strconv.Itoa(i) }

// unquote strips DOT quoting and line continuations from an attribute value.
func unquote(v string) string {
	v = strings.ReplaceAll(v, "\\\n", "")
	return strings.Trim(v, "\"")
}

func parseFloats(v string, want int) ([]float64, error) {
	parts := strings.Split(unquote(v), ",")
	if len(parts) < want {
		return nil, fmt.Errorf("expected %d numbers in %q", want, v)
	}
	out := make([]float64, want)
	for i := range out {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", v, err)
		}
		out[i] = f
	}
	return out, nil
}

func parsePoint(v string) (Point, error) {
	f, err := parseFloats(v, 2)
	if err != nil {
		return Point{}, err
	}
	return Point{X: f[0], Y: f[1]}, nil
}

func parseBox(v string) ([4]float64, error) {
	var bb [4]float64
	f, err := parseFloats(v, 4)
	if err != nil {
		return bb, err
	}
	copy(bb[:], f)
	return bb, nil
}

var _ Engine = (*GraphvizEngine)(nil)
