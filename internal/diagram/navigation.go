package diagram

import "sort"

type navKind int

const (
	navJob navKind = iota
	navJoin
)

// noDirection lets the walk pick the last branch at a join and derive a
// direction from priorities at a job.
const noDirection = 2

type navLink struct {
	in, out  string
	priority int
	reverse  int
}

// NavTarget identifies the node a navigation key stands for.
type NavTarget struct {
	Stage string // "" at top level
	Name  string
}

// NavigationGraph supports keyboard walks over jobs. Jobs become navigation
// nodes linked through in/out joins; joins with a single parent or child are
// then folded away, keeping sibling priorities so a walk stays on the same
// side of the graph. Gates are not navigable.
type NavigationGraph struct {
	kinds   map[string]navKind
	order   []string
	links   []navLink
	targets map[string]NavTarget
}

// NavKey is the navigation key of a job, qualified by its stage when nested.
func NavKey(stage, name string) string {
	if stage == "" {
		return name
	}
	return stage + "-" + name
}

// NewNavigationGraph builds the navigation graph of a translated node tree.
func NewNavigationGraph(nodes []*GraphNode) *NavigationGraph {
	g := &NavigationGraph{
		kinds:   make(map[string]navKind),
		targets: make(map[string]NavTarget),
	}
	g.addNode("root", navJoin)
	g.addScope(nodes, "", "root")
	g.reduce()
	return g
}

func (g *NavigationGraph) addScope(nodes []*GraphNode, stage, entry string) {
	siblings := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		siblings[n.Name] = n.Kind != NodeKindGate
	}
	key := func(name string) string { return NavKey(stage, name) }

	for _, n := range nodes {
		if n.Kind == NodeKindGate {
			continue
		}
		in, out := "in-"+key(n.Name), "out-"+key(n.Name)
		g.addNode(in, navJoin)
		g.addNode(out, navJoin)

		linked := false
		for i, dep := range n.DependsOn {
			if !siblings[dep] {
				continue
			}
			from := "out-" + key(dep)
			g.links = append(g.links, navLink{in: from, out: in, priority: len(g.children(from)), reverse: i})
			linked = true
		}
		if !linked {
			prio := len(g.children(entry))
			g.links = append(g.links, navLink{in: entry, out: in, priority: prio, reverse: prio})
		}

		Match(n, KindHandlers[struct{}]{
			Job: func(n *GraphNode) struct{} {
				k := key(n.Name)
				g.addNode(k, navJob)
				g.targets[k] = NavTarget{Stage: stage, Name: n.Name}
				g.link(in, k, 0)
				g.link(k, out, 0)
				return struct{}{}
			},
			Stage: func(n *GraphNode) struct{} {
				g.addStage(n, in, out)
				return struct{}{}
			},
		})
	}
}

func (g *NavigationGraph) addStage(n *GraphNode, in, out string) {
	jobs := 0
	for _, sub := range n.SubGraph {
		if sub.Kind != NodeKindGate {
			jobs++
		}
	}
	if jobs == 0 {
		g.link(in, out, 0)
		return
	}

	g.addScope(n.SubGraph, n.Name, in)

	// Sub-graph leaves feed the stage out join.
	prio := 0
	for _, sub := range n.SubGraph {
		if sub.Kind == NodeKindGate {
			continue
		}
		subOut := "out-" + NavKey(n.Name, sub.Name)
		if len(g.children(subOut)) == 0 {
			g.link(subOut, out, prio)
			prio++
		}
	}
}

func (g *NavigationGraph) addNode(key string, kind navKind) {
	if _, ok := g.kinds[key]; !ok {
		g.order = append(g.order, key)
	}
	g.kinds[key] = kind
}

func (g *NavigationGraph) link(in, out string, priority int) {
	g.links = append(g.links, navLink{in: in, out: out, priority: priority, reverse: priority})
}

func (g *NavigationGraph) removeNode(key string) {
	delete(g.kinds, key)
	for i, k := range g.order {
		if k == key {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	kept := g.links[:0]
	for _, l := range g.links {
		if l.in != key && l.out != key {
			kept = append(kept, l)
		}
	}
	g.links = kept
}

// reduce folds every join with one parent or at most one child until none is left.
func (g *NavigationGraph) reduce() {
	for changed := true; changed; {
		changed = false
		for _, k := range append([]string(nil), g.order...) {
			if g.kinds[k] != navJoin {
				continue
			}
			parents := g.parentsLinks(k)
			children := g.childrenLinks(k)
			switch {
			case len(parents) == 1:
				p := parents[0]
				for i := range g.links {
					if g.links[i].in == p.in && g.links[i].priority > p.priority {
						g.links[i].priority += len(children) - 1
					}
				}
				for _, c := range children {
					g.links = append(g.links, navLink{in: p.in, out: c.out, priority: c.priority + p.priority, reverse: c.reverse})
				}
			case len(children) == 1:
				c := children[0]
				for i := range g.links {
					if g.links[i].out == c.out && g.links[i].priority > c.priority {
						g.links[i].priority += len(parents) - 1
					}
				}
				for _, p := range parents {
					g.links = append(g.links, navLink{in: p.in, out: c.out, priority: p.priority + c.priority, reverse: p.reverse})
				}
			}
			if len(parents) == 1 || len(children) <= 1 {
				g.removeNode(k)
				changed = true
			}
		}
	}
}

func (g *NavigationGraph) parentsLinks(key string) []navLink {
	var out []navLink
	for _, l := range g.links {
		if l.out == key {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].reverse < out[j].reverse })
	return out
}

func (g *NavigationGraph) childrenLinks(key string) []navLink {
	var out []navLink
	for _, l := range g.links {
		if l.in == key {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].priority < out[j].priority })
	return out
}

func (g *NavigationGraph) parents(key string) []string {
	links := g.parentsLinks(key)
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.in
	}
	return out
}

func (g *NavigationGraph) children(key string) []string {
	links := g.childrenLinks(key)
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.out
	}
	return out
}

// Target resolves a navigation key to its node.
func (g *NavigationGraph) Target(key string) (NavTarget, bool) {
	t, ok := g.targets[key]
	return t, ok
}

// Has reports whether key is a navigable job.
func (g *NavigationGraph) Has(key string) bool {
	k, ok := g.kinds[key]
	return ok && k == navJob
}

// Entry returns the first job reached from the graph source, or "".
func (g *NavigationGraph) Entry() string {
	for _, k := range g.order {
		if len(g.parentsLinks(k)) > 0 {
			continue
		}
		if g.kinds[k] == navJob {
			return k
		}
		return g.next(k, 0, noDirection)
	}
	return ""
}

// Next moves one rank forward. From no selection it returns the entry job.
func (g *NavigationGraph) Next(key string) string {
	return g.next(key, 0, noDirection)
}

// Previous moves one rank backward. A job with no parent stays selected.
func (g *NavigationGraph) Previous(key string) string {
	return g.previous(key, noDirection)
}

// SideNext moves to the following sibling branch, or returns key when none.
func (g *NavigationGraph) SideNext(key string) string {
	return g.sideNext(key, 0)
}

// SidePrevious moves to the preceding sibling branch, or returns key when none.
func (g *NavigationGraph) SidePrevious(key string) string {
	return g.sidePrevious(key, 0)
}

func (g *NavigationGraph) previous(key string, dir int) string {
	if _, ok := g.kinds[key]; key == "" || !ok {
		return g.Entry()
	}
	var links []navLink
	for _, l := range g.links {
		if l.out == key {
			links = append(links, l)
		}
	}
	sort.SliceStable(links, func(i, j int) bool { return links[i].priority < links[j].priority })
	if len(links) == 0 {
		if g.kinds[key] == navJoin {
			return ""
		}
		return key
	}

	if g.kinds[key] != navJoin && (dir == noDirection || dir == 0) {
		if len(links) != 1 {
			dir = 0
		} else {
			neighbours := g.childrenLinks(links[0].in)
			dir = directionFromPriority(priorityOf(neighbours, func(l navLink) bool { return l.out == key }), len(neighbours))
		}
	}
	parent := links[indexFromDirection(dir, len(links))].in
	if g.kinds[parent] == navJob {
		return parent
	}
	return g.previous(parent, dir)
}

func (g *NavigationGraph) next(key string, depth, dir int) string {
	if _, ok := g.kinds[key]; key == "" || !ok {
		return g.Entry()
	}
	children := g.children(key)
	if len(children) == 0 {
		return key
	}

	if g.kinds[key] != navJoin && (dir == noDirection || dir == 0) {
		if len(children) != 1 {
			dir = 0
		} else {
			neighbours := g.parentsLinks(children[0])
			dir = directionFromPriority(priorityOf(neighbours, func(l navLink) bool { return l.in == key }), len(neighbours))
		}
	}
	child := children[indexFromDirection(dir, len(children))]
	if g.kinds[child] == navJob && depth == 0 {
		return child
	}
	return g.next(child, max(depth-1, 0), dir)
}

func (g *NavigationGraph) sidePrevious(key string, depth int) string {
	if _, ok := g.kinds[key]; key == "" || !ok {
		return g.Entry()
	}
	parents := g.parents(key)
	if len(parents) == 0 {
		if depth > 0 || g.kinds[key] == navJoin {
			return ""
		}
		return key
	}
	siblings := g.children(parents[0])
	if len(siblings) == 1 || siblings[0] == key {
		if r := g.sidePrevious(parents[0], depth+1); r != "" {
			return r
		}
		if depth > 0 {
			return ""
		}
		return key
	}
	return g.descend(siblings[indexOf(siblings, key)-1], depth)
}

func (g *NavigationGraph) sideNext(key string, depth int) string {
	if _, ok := g.kinds[key]; key == "" || !ok {
		return g.Entry()
	}
	parents := g.parents(key)
	if len(parents) == 0 {
		if depth > 0 || g.kinds[key] == navJoin {
			return ""
		}
		return key
	}
	last := parents[len(parents)-1]
	siblings := g.children(last)
	if len(siblings) == 1 || siblings[len(siblings)-1] == key {
		if r := g.sideNext(last, depth+1); r != "" {
			return r
		}
		if depth > 0 {
			return ""
		}
		return key
	}
	return g.descend(siblings[indexOf(siblings, key)+1], depth)
}

// descend walks down depth ranks from a sibling reached sideways.
func (g *NavigationGraph) descend(key string, depth int) string {
	if g.kinds[key] == navJob && depth == 0 {
		return key
	}
	return g.next(key, max(depth-1, 0), noDirection)
}

func priorityOf(links []navLink, match func(navLink) bool) int {
	for _, l := range links {
		if match(l) {
			return l.priority
		}
	}
	return 0
}

func indexOf(list []string, key string) int {
	for i, k := range list {
		if k == key {
			return i
		}
	}
	return 0
}

func directionFromPriority(priority, count int) int {
	half := float64(count) / 2
	switch p := float64(priority); {
	case p == half:
		return 0
	case p < half:
		return -1
	default:
		return 1
	}
}

func indexFromDirection(dir, length int) int {
	if length <= 1 {
		return 0
	}
	switch {
	case dir == 0:
		return (length+1)/2 - 1
	case dir < 0:
		return 0
	default:
		return length - 1
	}
}
