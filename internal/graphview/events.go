package graphview

import (
	"time"

	"github.com/rendis/wfgraph/internal/diagram"
)

// Events are the callbacks fired by a StagesGraph. Nil callbacks are skipped.
type Events struct {
	SelectJob    func(name string)
	SelectGate   func(node *diagram.GraphNode)
	SelectJobRun func(id string)
	SelectHook   func(event string)
}

func (e Events) selectJob(name string) {
	if e.SelectJob != nil {
		e.SelectJob(name)
	}
}

func (e Events) selectGate(n *diagram.GraphNode) {
	if e.SelectGate != nil {
		e.SelectGate(n)
	}
}

func (e Events) selectJobRun(id string) {
	if e.SelectJobRun != nil {
		e.SelectJobRun(id)
	}
}

func (e Events) selectHook(event string) {
	if e.SelectHook != nil {
		e.SelectHook(event)
	}
}

// MouseEventType is the kind of pointer event on a node.
type MouseEventType string

const (
	MouseEnter MouseEventType = "enter"
	MouseOut   MouseEventType = "out"
	MouseClick MouseEventType = "click"
)

// MouseEvent is a pointer event on a node. Stage is empty for top-level
// nodes. RunID is set when the pointer hit the run badge of a job.
type MouseEvent struct {
	Type  MouseEventType
	Stage string
	Node  string
	RunID string
}

// Hook is a trigger declared under `on`. Schedules carry their cron
// expression and next fire time.
type Hook struct {
	Event    string
	Cron     string
	Timezone string
	Next     time.Time
}
