package diagram

import (
	"github.com/rendis/wfgraph/internal/matrix"
	"github.com/rendis/wfgraph/pkg/schema"
)

// GateNodeName is the name of the gate node guarding job.
func GateNodeName(job string) string { return "gate-" + job }

// Collision is a node dropped by Translate because its scope already holds
// a node with the same name. Scope is the stage name, "" at top level.
type Collision struct {
	Scope string
	Name  string
	Kind  NodeKind
	JobID string
}

// Translate turns a workflow definition into the node tree: stages first in
// document order, then jobs. Matrix jobs are replaced by their derived jobs
// and every needs list is rewritten through the returned expansion.
// Names stay unique per scope: the first node keeps a name and later ones
// are dropped (see Collisions).
func Translate(wf *schema.Workflow) ([]*GraphNode, matrix.Expansion) {
	nodes, exp, _ := translate(wf)
	return nodes, exp
}

// Collisions lists the nodes Translate drops for wf.
func Collisions(wf *schema.Workflow) []Collision {
	_, _, c := translate(wf)
	return c
}

// scope collects the children of one container, refusing taken names.
type scope struct {
	name  string
	nodes *[]*GraphNode
	taken map[string]bool
}

func newScope(name string, nodes *[]*GraphNode) *scope {
	return &scope{name: name, nodes: nodes, taken: map[string]bool{}}
}

func (s *scope) claim(n *GraphNode, collisions *[]Collision) bool {
	if s.taken[n.Name] {
		*collisions = append(*collisions, Collision{Scope: s.name, Name: n.Name, Kind: n.Kind, JobID: n.JobID})
		return false
	}
	s.taken[n.Name] = true
	return true
}

func translate(wf *schema.Workflow) ([]*GraphNode, matrix.Expansion, []Collision) {
	if wf == nil {
		return nil, matrix.Expansion{}, nil
	}
	exp := matrix.Expand(wf.Jobs)

	var collisions []Collision
	nodes := make([]*GraphNode, 0, len(wf.Stages)+len(wf.Jobs))
	top := newScope("", &nodes)
	stages := make(map[string]*scope, len(wf.Stages))
	for _, st := range wf.Stages {
		n := &GraphNode{Name: st.Name, Kind: NodeKindStage, DependsOn: uniqueOrdered(st.Needs)}
		if !top.claim(n, &collisions) {
			continue
		}
		nodes = append(nodes, n)
		stages[st.Name] = newScope(st.Name, &n.SubGraph)
	}

	for i := range wf.Jobs {
		job := &wf.Jobs[i]
		target := top
		if st, ok := stages[job.Stage]; ok && job.Stage != "" {
			target = st
		}
		for _, jn := range jobNodes(job, exp) {
			if !target.claim(jn, &collisions) {
				continue
			}
			if g := gateNode(wf, job, jn); g != nil && target.claim(g, &collisions) {
				*target.nodes = append(*target.nodes, g)
			}
			*target.nodes = append(*target.nodes, jn)
		}
	}
	return nodes, exp, collisions
}

func jobNodes(job *schema.Job, exp matrix.Expansion) []*GraphNode {
	needs := exp.RewriteNeeds(job.Needs)
	if !job.HasMatrix() {
		return []*GraphNode{{Name: job.ID, Kind: NodeKindJob, DependsOn: needs, JobID: job.ID, Job: job}}
	}
	derived := exp[job.ID]
	out := make([]*GraphNode, 0, len(derived))
	for _, d := range derived {
		out = append(out, &GraphNode{
			Name:      d.Name,
			Kind:      NodeKindJob,
			DependsOn: append([]string(nil), needs...),
			JobID:     job.ID,
			Job:       job,
			Matrix:    d.Combination,
		})
	}
	return out
}

// gateNode returns nil when the job has no gate or names an unknown one.
func gateNode(wf *schema.Workflow, job *schema.Job, jn *GraphNode) *GraphNode {
	if job.Gate == "" {
		return nil
	}
	def, ok := wf.Gates[job.Gate]
	if !ok {
		return nil
	}
	return &GraphNode{
		Name:      GateNodeName(jn.Name),
		Kind:      NodeKindGate,
		GateName:  job.Gate,
		GateChild: jn.Name,
		Gate:      &def,
	}
}

// Walk visits every node depth-first, descending into stage sub-graphs.
func Walk(nodes []*GraphNode, fn func(n *GraphNode)) {
	for _, n := range nodes {
		fn(n)
		if len(n.SubGraph) > 0 {
			Walk(n.SubGraph, fn)
		}
	}
}

// BindRuns clears every run then attaches runs to job nodes by their
// matrix-resolved name. Unmatched runs are dropped and later records win.
func BindRuns(nodes []*GraphNode, runs []schema.RunJob, exp matrix.Expansion) int {
	byName := make(map[string]*GraphNode)
	Walk(nodes, func(n *GraphNode) {
		n.Run = nil
		if n.Kind == NodeKindJob {
			byName[n.Name] = n
		}
	})

	bound := 0
	for i := range runs {
		n, ok := byName[exp.RunName(runs[i])]
		if !ok {
			continue
		}
		run := runs[i]
		n.Run = &run
		bound++
	}
	return bound
}

// BindEvents clears every gate event then attaches each event to the job
// nodes declared with its job id and to the gates guarding them.
func BindEvents(nodes []*GraphNode, events []schema.JobEvent) {
	jobs := make(map[string]*GraphNode)
	var gates []*GraphNode
	Walk(nodes, func(n *GraphNode) {
		n.Event = nil
		switch n.Kind {
		case NodeKindJob:
			jobs[n.Name] = n
		case NodeKindGate:
			gates = append(gates, n)
		}
	})

	for i := range events {
		ev := events[i]
		for _, j := range jobs {
			if j.JobID == ev.JobID {
				j.Event = &ev
			}
		}
		for _, g := range gates {
			if child, ok := jobs[g.GateChild]; ok && child.JobID == ev.JobID {
				g.Event = &ev
			}
		}
	}
}

func uniqueOrdered(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
