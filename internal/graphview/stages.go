// Package graphview is the workflow graph component: it turns definitions
// and run feeds into a drawn, navigable graph and emits selection events.
package graphview

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rendis/wfgraph/internal/definition"
	"github.com/rendis/wfgraph/internal/diagram"
	"github.com/rendis/wfgraph/internal/expressions"
	"github.com/rendis/wfgraph/internal/interaction"
	"github.com/rendis/wfgraph/internal/layout"
	"github.com/rendis/wfgraph/internal/logging"
	"github.com/rendis/wfgraph/internal/matrix"
	"github.com/rendis/wfgraph/internal/scheduler"
	"github.com/rendis/wfgraph/pkg/schema"
)

// Options configures a StagesGraph.
type Options struct {
	Config     layout.Config
	Engines    layout.EngineFactory // defaults to Graphviz
	GateEngine expressions.Engine   // defaults to expr
	Logger     *slog.Logger
	Events     Events
	Now        func() time.Time

	NavigationDisabled bool
}

// StagesGraph owns one workflow graph: its definition, bound runs, layout
// and selection. Methods must be called from a single goroutine.
type StagesGraph struct {
	id       string
	cfg      layout.Config
	engines  layout.EngineFactory
	gates    expressions.Engine
	loader   *definition.Loader
	calendar *scheduler.Calendar
	logger   *slog.Logger
	events   Events
	now      func() time.Time
	navOff   bool

	workflow *schema.Workflow
	nodes    []*diagram.GraphNode
	exp      matrix.Expansion
	runs     []schema.RunJob
	run      *schema.WorkflowRun

	graph   *diagram.Graph
	driver  *layout.Driver
	router  *interaction.Router
	routers map[string]*interaction.Router // by stage name
	nav     *diagram.NavigationGraph
	navKey  string

	width, height float64
}

// New creates an empty graph.
func New(opts Options) (*StagesGraph, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("graphview: %w", err)
	}
	loader, err := definition.NewLoader()
	if err != nil {
		return nil, fmt.Errorf("graphview: %w", err)
	}
	if opts.Engines == nil {
		opts.Engines = layout.NewGraphvizFactory()
	}
	if opts.GateEngine == nil {
		opts.GateEngine = expressions.NewExprEngine()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &StagesGraph{
		id:       uuid.NewString(),
		cfg:      opts.Config,
		engines:  opts.Engines,
		gates:    opts.GateEngine,
		loader:   loader,
		calendar: scheduler.NewCalendar(),
		logger:   opts.Logger,
		events:   opts.Events,
		now:      opts.Now,
		navOff:   opts.NavigationDisabled,
		routers:  map[string]*interaction.Router{},
		exp:      matrix.Expansion{},
	}
	s.driver = layout.NewDriver(s.cfg, s.engines, s.logger)
	s.router = interaction.NewRouter(nil, diagram.Substitutions{})
	return s, nil
}

// ID returns the graph instance id attached to every log record.
func (s *StagesGraph) ID() string { return s.id }

func (s *StagesGraph) context(ctx context.Context) context.Context {
	return logging.WithGraphID(ctx, s.id)
}

// LoadWorkflow parses a YAML definition and displays it. On failure the
// previous graph stays displayed and the error is returned.
func (s *StagesGraph) LoadWorkflow(ctx context.Context, text []byte) error {
	ctx = s.context(ctx)
	wf, result, err := s.loader.Load(text)
	if err != nil {
		s.logger.WarnContext(ctx, "invalid workflow, keeping previous graph", slog.String("error", err.Error()))
		return err
	}
	for _, w := range result.Warnings {
		s.logger.DebugContext(ctx, "workflow warning",
			slog.String("path", w.Path),
			slog.String("code", w.Code),
			slog.String("message", w.Message),
		)
	}
	return s.SetWorkflow(ctx, wf)
}

// SetWorkflow displays an already parsed definition.
func (s *StagesGraph) SetWorkflow(ctx context.Context, wf *schema.Workflow) error {
	ctx = s.context(ctx)
	s.workflow = wf
	s.nodes, s.exp = diagram.Translate(wf)
	for _, c := range diagram.Collisions(wf) {
		s.logger.WarnContext(ctx, "duplicate node name, not drawn",
			slog.String("scope", c.Scope),
			slog.String("name", c.Name),
			slog.String("kind", string(c.Kind)),
		)
	}
	s.bind(ctx)

	for name, deps := range diagram.Dangling(s.nodes) {
		s.logger.DebugContext(ctx, "dangling needs ignored", slog.String("dependent", name), slog.Any("needs", deps))
	}

	s.nav = diagram.NewNavigationGraph(s.nodes)
	if !s.nav.Has(s.navKey) {
		s.navKey = ""
	}
	return s.redraw(ctx)
}

// SetRunJobs replaces the run records and redraws. A nil or empty slice
// clears every run.
func (s *StagesGraph) SetRunJobs(ctx context.Context, runs []schema.RunJob) error {
	ctx = s.context(ctx)
	s.runs = runs
	s.bind(ctx)
	return s.redraw(ctx)
}

// SetWorkflowRun sets the workflow run whose event and gate approvals are
// displayed.
func (s *StagesGraph) SetWorkflowRun(ctx context.Context, run *schema.WorkflowRun) error {
	ctx = s.context(ctx)
	s.run = run
	s.bind(ctx)
	return s.redraw(ctx)
}

func (s *StagesGraph) bind(ctx context.Context) {
	bound := diagram.BindRuns(s.nodes, s.runs, s.exp)
	if dropped := len(s.runs) - bound; dropped > 0 {
		s.logger.DebugContext(ctx, "run records without a node", slog.Int("dropped", dropped))
	}
	var events []schema.JobEvent
	if s.run != nil {
		events = s.run.JobEvents
	}
	diagram.BindEvents(s.nodes, events)
}

// redraw rebuilds the graph from the nodes and draws it. Selection and a
// user-moved viewport survive.
func (s *StagesGraph) redraw(ctx context.Context) error {
	g := diagram.BuildGraph(s.nodes)
	if err := diagram.EvaluateGates(ctx, s.gates, g); err != nil {
		s.logger.WarnContext(ctx, "gate evaluation failed", slog.String("engine", s.gates.Name()), slog.String("error", err.Error()))
	}
	if err := s.driver.Draw(ctx, g); err != nil {
		s.logger.ErrorContext(ctx, "layout failed", slog.String("error", err.Error()))
		return err
	}
	s.graph = g
	s.rebind()
	return nil
}

func (s *StagesGraph) rebind() {
	s.router.Rebind(s.driver.Scene(), s.graph.Subs)

	routers := make(map[string]*interaction.Router)
	for _, v := range s.graph.Vertices {
		if v.Sub == nil {
			continue
		}
		scene, ok := s.driver.SubScene(v.Key)
		if !ok {
			continue
		}
		r, ok := s.routers[v.Name()]
		if !ok {
			r = interaction.NewRouter(nil, diagram.Substitutions{})
		}
		r.Rebind(scene, v.Sub.Subs)
		routers[v.Name()] = r
	}
	s.routers = routers
}

// routerFor returns the router of a scope; "" is the top level.
func (s *StagesGraph) routerFor(stage string) (*interaction.Router, bool) {
	if stage == "" {
		return s.router, true
	}
	r, ok := s.routers[stage]
	return r, ok
}

// selectNode moves the selection to one node, clearing every other scope.
func (s *StagesGraph) selectNode(stage, name string) bool {
	s.router.Deselect()
	for _, r := range s.routers {
		r.Deselect()
	}
	r, ok := s.routerFor(stage)
	if !ok {
		return false
	}
	return r.Click(name)
}

// Selected returns the selected node and its stage.
func (s *StagesGraph) Selected() (stage, name string) {
	if n := s.router.Selected(); n != "" {
		return "", n
	}
	for st, r := range s.routers {
		if n := r.Selected(); n != "" {
			return st, n
		}
	}
	return "", ""
}

// Graph returns the last drawn graph.
func (s *StagesGraph) Graph() *diagram.Graph { return s.graph }

// Nodes returns the translated node tree.
func (s *StagesGraph) Nodes() []*diagram.GraphNode { return s.nodes }

// Workflow returns the displayed definition.
func (s *StagesGraph) Workflow() *schema.Workflow { return s.workflow }

// Driver returns the layout driver of the top-level surface.
func (s *StagesGraph) Driver() *layout.Driver { return s.driver }

// Direction returns the current rank direction.
func (s *StagesGraph) Direction() layout.Direction { return s.cfg.Direction }

// Resize sets the surface size.
func (s *StagesGraph) Resize(width, height float64) {
	s.width, s.height = width, height
	s.driver.Resize(width, height)
}

// Center fits the whole graph in the surface.
func (s *StagesGraph) Center() { s.driver.Center() }

// Pan moves the viewport.
func (s *StagesGraph) Pan(dx, dy float64) { s.driver.Pan(dx, dy) }

// Zoom scales the viewport around a surface point.
func (s *StagesGraph) Zoom(factor float64, at layout.Point) { s.driver.Zoom(factor, at) }

// ChangeDirection toggles between horizontal and vertical layout. The
// surface is redrawn with fresh engines and re-centred.
func (s *StagesGraph) ChangeDirection(ctx context.Context) error {
	ctx = s.context(ctx)
	s.cfg.Direction = s.cfg.Direction.Toggle()
	s.driver = layout.NewDriver(s.cfg, s.engines, s.logger)
	if s.width > 0 && s.height > 0 {
		s.driver.Resize(s.width, s.height)
	}
	s.logger.DebugContext(ctx, "direction changed", slog.String("direction", string(s.cfg.Direction)))
	if s.graph == nil {
		return nil
	}
	return s.redraw(ctx)
}

// findNode returns a node by scope and name.
func (s *StagesGraph) findNode(stage, name string) (*diagram.GraphNode, bool) {
	scope := s.nodes
	if stage != "" {
		scope = nil
		for _, n := range s.nodes {
			if n.Kind == diagram.NodeKindStage && n.Name == stage {
				scope = n.SubGraph
				break
			}
		}
	}
	for _, n := range scope {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}
