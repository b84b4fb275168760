package diagram

import (
	"sort"
	"strings"
)

// RawEdge is a dependency between two sibling node names, pointing from the
// dependency to the dependent.
type RawEdge struct {
	From string
	To   string
}

// Synthesize collapses divergence and convergence points of one scope into
// fork and join vertices. vertices are the plain vertices in display order;
// raw edges naming unknown vertices are ignored.
//
// A fork groups every parent sharing the exact same child set and a join
// every child sharing the exact same parent set. Raw edges are then rerouted
// through the substitutes and deduplicated by (from, to) with merged classes.
// Group members and keys are sorted so the result does not depend on edge order.
func Synthesize(vertices []*Vertex, raw []RawEdge) *Graph {
	g := &Graph{
		index: make(map[string]*Vertex, len(vertices)),
		Subs:  Substitutions{Out: map[string]string{}, In: map[string]string{}},
	}
	order := make(map[string]int, len(vertices))
	for i, v := range vertices {
		g.Vertices = append(g.Vertices, v)
		g.index[v.Key] = v
		order[v.Name()] = i
	}

	edges := normalizeEdges(raw, order)

	children := make(map[string][]string)
	parents := make(map[string][]string)
	for _, e := range edges {
		children[e.From] = append(children[e.From], e.To)
		parents[e.To] = append(parents[e.To], e.From)
	}

	forks := make(map[string]*Group)
	for parent, kids := range children {
		if len(kids) < 2 {
			continue
		}
		members := sortedUnique(kids)
		key := strings.Join(members, ",")
		grp, ok := forks[key]
		if !ok {
			grp = &Group{Key: key, Children: members}
			forks[key] = grp
		}
		grp.Parents = append(grp.Parents, parent)
	}

	joins := make(map[string]*Group)
	for child, ps := range parents {
		if len(ps) < 2 {
			continue
		}
		members := sortedUnique(ps)
		key := strings.Join(members, ",")
		grp, ok := joins[key]
		if !ok {
			grp = &Group{Key: key, Parents: members}
			joins[key] = grp
		}
		grp.Children = append(grp.Children, child)
	}

	merged := newEdgeSet()

	for _, key := range sortedKeys(forks) {
		grp := forks[key]
		sort.Strings(grp.Parents)
		g.Forks = append(g.Forks, grp)
		fk := ForkKey(key)
		g.addVertex(&Vertex{Key: fk, Kind: VertexFork, Group: grp})
		for _, p := range grp.Parents {
			merged.add(NodeKey(p), fk, key, p)
			g.Subs.Out[NodeKey(p)] = fk
		}
	}

	for _, key := range sortedKeys(joins) {
		grp := joins[key]
		sort.Strings(grp.Children)
		g.Joins = append(g.Joins, grp)
		jk := JoinKey(key)
		g.addVertex(&Vertex{Key: jk, Kind: VertexJoin, Group: grp})
		for _, c := range grp.Children {
			merged.add(jk, NodeKey(c), key, c)
			g.Subs.In[NodeKey(c)] = jk
		}
	}

	for _, e := range edges {
		from, to := NodeKey(e.From), NodeKey(e.To)
		if sub, ok := g.Subs.Out[from]; ok {
			from = sub
		}
		if sub, ok := g.Subs.In[to]; ok {
			to = sub
		}
		merged.add(from, to, e.From, e.To)
	}

	g.Edges = merged.edges
	return g
}

func (g *Graph) addVertex(v *Vertex) {
	g.Vertices = append(g.Vertices, v)
	g.index[v.Key] = v
}

// normalizeEdges drops unknown endpoints, self loops and duplicates, and
// orders edges by the display order of their endpoints.
func normalizeEdges(raw []RawEdge, order map[string]int) []RawEdge {
	seen := make(map[RawEdge]struct{}, len(raw))
	out := make([]RawEdge, 0, len(raw))
	for _, e := range raw {
		_, okFrom := order[e.From]
		_, okTo := order[e.To]
		if !okFrom || !okTo || e.From == e.To {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if order[out[i].From] != order[out[j].From] {
			return order[out[i].From] < order[out[j].From]
		}
		return order[out[i].To] < order[out[j].To]
	})
	return out
}

type edgeSet struct {
	edges []*Edge
	byKey map[[2]string]*Edge
}

func newEdgeSet() *edgeSet {
	return &edgeSet{byKey: make(map[[2]string]*Edge)}
}

func (s *edgeSet) add(from, to string, classes ...string) {
	k := [2]string{from, to}
	if e, ok := s.byKey[k]; ok {
		e.Classes = sortedUnique(append(e.Classes, classes...))
		return
	}
	e := &Edge{From: from, To: to, Classes: sortedUnique(classes)}
	s.byKey[k] = e
	s.edges = append(s.edges, e)
}

func sortedUnique(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
