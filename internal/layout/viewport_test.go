package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewport_Clamp(t *testing.T) {
	v := NewViewport(0.2, 15)
	assert.Equal(t, Identity, v.Transform())

	v.Set(Transform{X: 5, Y: 6, K: 100})
	assert.Equal(t, Transform{X: 5, Y: 6, K: 15}, v.Transform())

	v.Set(Transform{K: 0})
	assert.Equal(t, 0.2, v.Transform().K)
}

func TestViewport_ZoomKeepsFocusPoint(t *testing.T) {
	v := NewViewport(0.2, 15)
	v.Set(Transform{X: 10, Y: 20, K: 1})

	c := Point{X: 110, Y: 70}
	before := v.Transform().Invert(c)
	v.ZoomAt(2, c)

	assert.Equal(t, 2.0, v.Transform().K)
	after := v.Transform().Invert(c)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)

	v.ZoomAt(1000, c)
	assert.Equal(t, 15.0, v.Transform().K)
}

func TestViewport_Pan(t *testing.T) {
	v := NewViewport(0.2, 15)
	v.Pan(3, -4)
	v.Pan(1, 1)
	assert.Equal(t, Transform{X: 4, Y: -3, K: 1}, v.Transform())
}

func TestTransform_ApplyInvert(t *testing.T) {
	tr := Transform{X: 10, Y: 20, K: 2}
	p := Point{X: 3, Y: 4}
	assert.Equal(t, Point{X: 16, Y: 28}, tr.Apply(p))
	assert.Equal(t, p, tr.Invert(tr.Apply(p)))
}

func TestFit(t *testing.T) {
	// Small graph: the scale is capped by the origin bound.
	assert.Equal(t, Transform{X: 200, Y: 270, K: 1}, fit(800, 600, 400, 60, 40, 0.2, 1))

	// Large graph: the fit scale applies.
	tr := fit(800, 600, 1440, 60, 40, 0.2, 1)
	assert.InDelta(t, 0.5, tr.K, 1e-9)
	assert.InDelta(t, 40, tr.X, 1e-9)

	// Huge graph: clamped to the minimum.
	assert.Equal(t, 0.2, fit(800, 600, 100000, 60, 40, 0.2, 1).K)

	// Unclamped fit for nested surfaces.
	assert.InDelta(t, 260.0/720, fit(300, 169, 720, 60, 20, 0.2, 0).K, 1e-9)
}
