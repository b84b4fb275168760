package layout

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/rendis/wfgraph/internal/diagram"
	"github.com/rendis/wfgraph/internal/logging"
	"github.com/rendis/wfgraph/pkg/schema"
)

// Driver feeds built graphs to a layout engine and owns the viewport of one
// drawing surface. Stage vertices with a sub-graph get their own nested
// driver with a fixed stage-sized surface.
//
// A Driver is not safe for concurrent use.
type Driver struct {
	cfg      Config
	factory  EngineFactory
	engine   Engine
	viewport *Viewport
	logger   *slog.Logger
	nested   bool

	width, height float64
	centered      bool
	moved         bool

	scene  *Scene
	stages map[string]*Driver
}

// NewDriver creates a driver drawing with an engine from factory.
func NewDriver(cfg Config, factory EngineFactory, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		cfg:      cfg,
		factory:  factory,
		engine:   factory(cfg.Direction),
		viewport: NewViewport(cfg.MinScale, cfg.MaxScale),
		logger:   logger,
		stages:   map[string]*Driver{},
	}
}

func (d *Driver) newStageDriver() *Driver {
	sub := NewDriver(d.cfg, d.factory, d.logger)
	sub.nested = true
	sub.viewport = NewViewport(math.SmallestNonzeroFloat64, math.MaxFloat64)
	sub.width, sub.height = d.cfg.StageWidth, d.cfg.StageHeight
	return sub
}

// Draw replaces the engine content with g, lays it out and rebuilds the
// scene. The viewport is re-centred unless it was moved by the user. Stage
// sub-graphs are drawn first into fresh nested drivers, so a failing stage
// leaves this surface and every previous stage untouched. On failure the
// previous scene is kept.
func (d *Driver) Draw(ctx context.Context, g *diagram.Graph) error {
	stages := make(map[string]*Driver)
	for _, v := range g.Vertices {
		if v.Sub == nil {
			continue
		}
		sub := d.newStageDriver()
		if err := sub.Draw(logging.WithStage(ctx, v.Name()), v.Sub); err != nil {
			return fmt.Errorf("stage %s: %w", v.Name(), err)
		}
		stages[v.Key] = sub
	}

	d.engine.Clear()
	for _, v := range g.Vertices {
		if err := d.engine.RegisterNode(d.nodeSpec(v)); err != nil {
			return err
		}
	}
	for _, e := range g.Edges {
		err := d.engine.RegisterEdge(EdgeSpec{
			From:    e.From,
			To:      e.To,
			Arrow:   ArrowDefault,
			Style:   e.Style,
			Classes: e.Classes,
		})
		if err != nil {
			return err
		}
	}

	res, err := d.engine.Layout(ctx)
	if err != nil {
		return err
	}

	d.scene = newScene(g, res)
	d.stages = stages

	if d.nested || !d.moved {
		d.Center()
	}

	d.logger.DebugContext(ctx, "graph drawn",
		slog.Int("vertices", len(g.Vertices)),
		slog.Int("edges", len(g.Edges)),
		slog.Float64("width", res.Width),
		slog.Float64("height", res.Height),
	)
	return nil
}

// nodeSpec picks the shape and size of a vertex.
func (d *Driver) nodeSpec(v *diagram.Vertex) NodeSpec {
	rect := RectShape(d.cfg.Direction)
	circle := func(*diagram.Vertex) NodeSpec {
		return NodeSpec{Shape: ShapeCircle, Width: d.cfg.ForkJoinSize, Height: d.cfg.ForkJoinSize}
	}
	spec := diagram.MatchVertex(v, diagram.VertexHandlers[NodeSpec]{
		Node: func(v *diagram.Vertex) NodeSpec {
			return diagram.Match(v.Node, diagram.KindHandlers[NodeSpec]{
				Job: func(n *diagram.GraphNode) NodeSpec {
					return NodeSpec{Shape: rect, Width: d.cfg.JobWidth, Height: d.cfg.JobHeight, Label: n.Name}
				},
				Stage: func(n *diagram.GraphNode) NodeSpec {
					return NodeSpec{Shape: rect, Width: d.cfg.StageWidth, Height: d.cfg.StageHeight, Label: n.Name}
				},
				Gate: func(n *diagram.GraphNode) NodeSpec {
					return NodeSpec{Shape: rect, Width: d.cfg.GateWidth, Height: d.cfg.GateHeight, Label: n.GateName}
				},
			})
		},
		Fork: circle,
		Join: circle,
	})
	spec.ID = v.Key
	spec.Classes = v.Classes()
	return spec
}

// Resize sets the surface size. The graph is centred only if it never was.
func (d *Driver) Resize(width, height float64) {
	if d.nested {
		return
	}
	d.width, d.height = width, height
	if !d.centered {
		d.Center()
	}
}

// Center fits the whole graph in the surface. Nested drivers use the
// sub-graph margin and do not clamp the fit scale.
func (d *Driver) Center() {
	if d.scene == nil || d.width <= 0 || d.height <= 0 {
		return
	}
	if d.nested {
		d.viewport.Set(fit(d.width, d.height, d.scene.Width, d.scene.Height, d.cfg.MarginSubGraph, d.cfg.MinScale, 0))
	} else {
		d.viewport.Set(fit(d.width, d.height, d.scene.Width, d.scene.Height, d.cfg.Margin, d.cfg.MinScale, d.cfg.MaxOriginScale))
	}
	d.centered = true
	d.moved = false
}

// CenterNode centres the vertex key with a focus box around it. The
// viewport then counts as moved and survives redraws.
func (d *Driver) CenterNode(key string) error {
	if d.scene == nil {
		return schema.NewError(schema.ErrCodeNotFound, "nothing drawn").WithNode(key)
	}
	n, ok := d.scene.Node(key)
	if !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "vertex %s is not drawn", key).WithNode(key)
	}
	if d.width <= 0 || d.height <= 0 {
		return nil
	}
	k := d.viewport.clamp(math.Min(d.width/d.cfg.FocusWidth, d.height/d.cfg.FocusHeight))
	d.viewport.Set(Transform{X: d.width/2 - n.Box.X*k, Y: d.height/2 - n.Box.Y*k, K: k})
	d.centered = true
	d.moved = true
	return nil
}

// Pan moves the viewport by (dx, dy) surface pixels.
func (d *Driver) Pan(dx, dy float64) {
	d.viewport.Pan(dx, dy)
	d.moved = true
}

// Zoom multiplies the scale by factor around the surface point c.
func (d *Driver) Zoom(factor float64, c Point) {
	d.viewport.ZoomAt(d.viewport.Transform().K*factor, c)
	d.moved = true
}

// Transform returns the current viewport transform.
func (d *Driver) Transform() Transform { return d.viewport.Transform() }

// Moved reports whether the viewport was moved since the last centring.
func (d *Driver) Moved() bool { return d.moved }

// Scene returns the last drawn scene, or nil before the first Draw.
func (d *Driver) Scene() *Scene { return d.scene }

// Stage returns the nested driver of a stage vertex.
func (d *Driver) Stage(key string) (*Driver, bool) {
	sub, ok := d.stages[key]
	return sub, ok
}

// SubScene returns the scene of a stage vertex.
func (d *Driver) SubScene(key string) (*Scene, bool) {
	sub, ok := d.stages[key]
	if !ok || sub.scene == nil {
		return nil, false
	}
	return sub.scene, true
}

// Engine returns the layout engine of this surface.
func (d *Driver) Engine() Engine { return d.engine }

// Direction returns the rank direction the driver draws with.
func (d *Driver) Direction() Direction { return d.cfg.Direction }
