package layout

import "math"

// Transform maps graph coordinates to surface coordinates:
// screen = graph*K + (X, Y).
type Transform struct {
	X, Y float64
	K    float64
}

// Identity is the transform that leaves coordinates unchanged.
var Identity = Transform{K: 1}

// Apply maps a graph point to the surface.
func (t Transform) Apply(p Point) Point {
	return Point{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// Invert maps a surface point back to graph coordinates.
func (t Transform) Invert(p Point) Point {
	return Point{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

// Viewport is a pan/zoom transform whose scale stays in [min, max].
type Viewport struct {
	t        Transform
	min, max float64
}

// NewViewport returns an identity viewport bounded by [min, max].
func NewViewport(min, max float64) *Viewport {
	v := &Viewport{min: min, max: max}
	v.Set(Identity)
	return v
}

// Transform returns the current transform.
func (v *Viewport) Transform() Transform { return v.t }

// Set replaces the transform, clamping its scale.
func (v *Viewport) Set(t Transform) {
	t.K = v.clamp(t.K)
	v.t = t
}

// Pan translates by (dx, dy) surface pixels.
func (v *Viewport) Pan(dx, dy float64) {
	v.t.X += dx
	v.t.Y += dy
}

// ZoomAt sets the scale to k keeping the surface point c fixed.
func (v *Viewport) ZoomAt(k float64, c Point) {
	k = v.clamp(k)
	g := v.t.Invert(c)
	v.t = Transform{X: c.X - g.X*k, Y: c.Y - g.Y*k, K: k}
}

func (v *Viewport) clamp(k float64) float64 {
	if math.IsNaN(k) || k <= 0 {
		return v.min
	}
	return math.Max(v.min, math.Min(v.max, k))
}

// fit returns the transform centring a gw x gh graph in a w x h surface with
// margin, with its scale clamped to [lo, hi]. A non-positive hi leaves the
// scale unclamped.
func fit(w, h, gw, gh, margin, lo, hi float64) Transform {
	if gw <= 0 || gh <= 0 {
		return Transform{X: w / 2, Y: h / 2, K: 1}
	}
	k := math.Min((w-2*margin)/gw, (h-2*margin)/gh)
	if hi > 0 {
		k = math.Max(lo, math.Min(hi, k))
	}
	if k <= 0 {
		k = lo
	}
	return Transform{X: (w - gw*k) / 2, Y: (h - gh*k) / 2, K: k}
}
