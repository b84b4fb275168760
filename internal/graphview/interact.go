package graphview

import (
	"context"
	"log/slog"

	"github.com/rendis/wfgraph/internal/diagram"
	"github.com/rendis/wfgraph/internal/layout"
	"github.com/rendis/wfgraph/internal/logging"
	"github.com/rendis/wfgraph/pkg/schema"
)

// Navigation keys understood by KeyDown.
const (
	KeyUp    = "ArrowUp"
	KeyDown  = "ArrowDown"
	KeyLeft  = "ArrowLeft"
	KeyRight = "ArrowRight"
	KeyEnter = "Enter"
)

// NodeMouseEvent routes a pointer event. Hover toggles highlights; a click
// selects the node, emits one selection event and centres the node.
func (s *StagesGraph) NodeMouseEvent(ctx context.Context, ev MouseEvent) error {
	ctx = logging.WithNode(logging.WithStage(s.context(ctx), ev.Stage), ev.Node)

	node, ok := s.findNode(ev.Stage, ev.Node)
	if !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "no node %q in scope %q", ev.Node, ev.Stage).WithNode(ev.Node)
	}
	r, ok := s.routerFor(ev.Stage)
	if !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "stage %q is not drawn", ev.Stage).WithNode(ev.Stage)
	}

	switch ev.Type {
	case MouseEnter:
		r.Hover(ev.Node, true)
	case MouseOut:
		r.Hover(ev.Node, false)
	case MouseClick:
		return s.click(ctx, ev, node)
	default:
		return schema.NewErrorf(schema.ErrCodeInvalidInput, "unknown mouse event %q", ev.Type)
	}
	return nil
}

func (s *StagesGraph) click(ctx context.Context, ev MouseEvent, node *diagram.GraphNode) error {
	if key := diagram.NavKey(ev.Stage, ev.Node); s.nav != nil && s.nav.Has(key) {
		s.navKey = key
	}
	s.selectNode(ev.Stage, ev.Node)

	switch {
	case ev.RunID != "":
		s.events.selectJobRun(ev.RunID)
	case node.Kind == diagram.NodeKindGate:
		s.events.selectGate(node)
	default:
		s.events.selectJob(node.Name)
	}
	s.logger.DebugContext(ctx, "node clicked", slog.String("kind", string(node.Kind)))

	// Nested nodes centre their stage.
	focus := ev.Node
	if ev.Stage != "" {
		focus = ev.Stage
	}
	return s.driver.CenterNode(diagram.NodeKey(focus))
}

// KeyDown walks the navigation graph with the arrow keys and activates the
// selected node with Enter. It reports whether the key was handled.
func (s *StagesGraph) KeyDown(ctx context.Context, key string) bool {
	if s.nav == nil || s.navOff {
		return false
	}

	horizontal := s.cfg.Direction != layout.Vertical
	var next string
	switch key {
	case KeyDown:
		next = pick(horizontal, s.nav.SideNext, s.nav.Next)(s.navKey)
	case KeyUp:
		next = pick(horizontal, s.nav.SidePrevious, s.nav.Previous)(s.navKey)
	case KeyLeft:
		next = pick(horizontal, s.nav.Previous, s.nav.SidePrevious)(s.navKey)
	case KeyRight:
		next = pick(horizontal, s.nav.Next, s.nav.SideNext)(s.navKey)
	case KeyEnter:
		t, ok := s.nav.Target(s.navKey)
		if !ok {
			return false
		}
		if err := s.NodeMouseEvent(ctx, MouseEvent{Type: MouseClick, Stage: t.Stage, Node: t.Name}); err != nil {
			s.logger.WarnContext(s.context(ctx), "activate node", slog.String("error", err.Error()))
		}
		return true
	default:
		return false
	}

	if next == "" {
		return true
	}
	s.navKey = next
	if t, ok := s.nav.Target(next); ok {
		s.selectNode(t.Stage, t.Name)
	}
	return true
}

// NavigationKey returns the navigation key of the keyboard selection.
func (s *StagesGraph) NavigationKey() string { return s.navKey }

func pick(horizontal bool, h, v func(string) string) func(string) string {
	if horizontal {
		return h
	}
	return v
}

// Hooks lists the triggers declared under `on`. Each schedule is listed with
// its next fire time; invalid schedules keep a zero time.
func (s *StagesGraph) Hooks() []Hook {
	if s.workflow == nil || s.workflow.On == nil {
		return nil
	}
	on := s.workflow.On
	var hooks []Hook
	for _, event := range on.Events {
		if event != "schedule" || len(on.Schedules) == 0 {
			hooks = append(hooks, Hook{Event: event})
			continue
		}
		for _, sch := range on.Schedules {
			h := Hook{Event: event, Cron: sch.Cron, Timezone: sch.Timezone}
			if next, err := s.calendar.NextRun(sch, s.now()); err == nil {
				h.Next = next
			}
			hooks = append(hooks, h)
		}
	}
	return hooks
}

// SelectedHook returns the event that triggered the displayed run, or ""
// when the workflow declares no triggers.
func (s *StagesGraph) SelectedHook() string {
	if s.run == nil || s.workflow == nil || s.workflow.On == nil {
		return ""
	}
	return s.run.Event.EventName
}

// ClickHook emits SelectHook for a trigger.
func (s *StagesGraph) ClickHook(event string) {
	s.events.selectHook(event)
}
