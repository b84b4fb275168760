// Package interaction routes pointer events to highlight and selection
// flags of a drawn graph.
package interaction

import "github.com/rendis/wfgraph/internal/diagram"

// Surface is the drawn graph the router flags.
type Surface interface {
	Highlight(key string, on bool) bool
	HighlightTagged(class string, on bool) int
	Select(key string) bool
	SelectNone()
}

// Router applies hover and click events to one surface. The substitution
// table comes from the synthesis pass that produced the surface.
type Router struct {
	surface  Surface
	subs     diagram.Substitutions
	selected string
}

// NewRouter creates a router for surface.
func NewRouter(surface Surface, subs diagram.Substitutions) *Router {
	return &Router{surface: surface, subs: subs}
}

// Hover toggles the highlight of the named node, of the fork/join vertices
// standing in for its outgoing and incoming sides, and of every edge tagged
// with the name.
func (r *Router) Hover(name string, active bool) {
	if r.surface == nil {
		return
	}
	key := diagram.NodeKey(name)
	r.surface.Highlight(key, active)
	if out, ok := r.subs.Out[key]; ok {
		r.surface.Highlight(out, active)
	}
	if in, ok := r.subs.In[key]; ok {
		r.surface.Highlight(in, active)
	}
	r.surface.HighlightTagged(name, active)
}

// Click clears every selection then selects the named node. A node no longer
// drawn leaves nothing selected; Click reports whether the node was selected.
func (r *Router) Click(name string) bool {
	if r.surface == nil {
		return false
	}
	r.surface.SelectNone()
	if name != "" && r.surface.Select(diagram.NodeKey(name)) {
		r.selected = name
		return true
	}
	r.selected = ""
	return false
}

// Rebind switches to a redrawn surface and re-applies the remembered
// selection if the node is still drawn.
func (r *Router) Rebind(surface Surface, subs diagram.Substitutions) {
	r.surface, r.subs = surface, subs
	if r.selected == "" || surface == nil {
		return
	}
	surface.SelectNone()
	if !surface.Select(diagram.NodeKey(r.selected)) {
		r.selected = ""
	}
}

// Selected returns the selected node name, or "".
func (r *Router) Selected() string { return r.selected }

// Deselect clears the selection.
func (r *Router) Deselect() {
	r.selected = ""
	if r.surface != nil {
		r.surface.SelectNone()
	}
}
