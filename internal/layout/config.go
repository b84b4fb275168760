// Package layout lays out built graphs and manages the interactive viewport.
package layout

import "github.com/rendis/wfgraph/pkg/schema"

// Direction is the rank direction of a drawn graph.
type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// Toggle returns the other direction.
func (d Direction) Toggle() Direction {
	if d == Vertical {
		return Horizontal
	}
	return Vertical
}

// Config holds the drawing constants. Sizes are in pixels.
type Config struct {
	Direction Direction

	MinScale       float64
	MaxScale       float64
	MaxOriginScale float64 // upper bound of the fit scale on auto-centering

	Margin         float64
	MarginSubGraph float64

	JobWidth, JobHeight     float64
	GateWidth, GateHeight   float64
	StageWidth, StageHeight float64
	ForkJoinSize            float64
	FocusWidth, FocusHeight float64
}

// DefaultConfig returns the default drawing constants.
func DefaultConfig() Config {
	return Config{
		Direction:      Horizontal,
		MinScale:       0.2,
		MaxScale:       15,
		MaxOriginScale: 1,
		Margin:         40,
		MarginSubGraph: 20,
		JobWidth:       180,
		JobHeight:      60,
		GateWidth:      60,
		GateHeight:     60,
		StageWidth:     300,
		StageHeight:    169,
		ForkJoinSize:   60,
		FocusWidth:     300,
		FocusHeight:    169,
	}
}

// Validate checks the scale bounds and sizes.
func (c Config) Validate() error {
	if c.Direction != Horizontal && c.Direction != Vertical {
		return schema.NewErrorf(schema.ErrCodeInvalidInput, "unknown direction %q", c.Direction)
	}
	if c.MinScale <= 0 || c.MaxScale < c.MinScale {
		return schema.NewErrorf(schema.ErrCodeInvalidInput,
			"invalid scale bounds [%g, %g]", c.MinScale, c.MaxScale)
	}
	if c.MaxOriginScale < c.MinScale {
		return schema.NewErrorf(schema.ErrCodeInvalidInput,
			"max origin scale %g below min scale %g", c.MaxOriginScale, c.MinScale)
	}
	sizes := map[string]float64{
		"job width": c.JobWidth, "job height": c.JobHeight,
		"gate width": c.GateWidth, "gate height": c.GateHeight,
		"stage width": c.StageWidth, "stage height": c.StageHeight,
		"fork/join size": c.ForkJoinSize,
		"focus width": c.FocusWidth, "focus height": c.FocusHeight,
	}
	for name, v := range sizes {
		if v <= 0 {
			return schema.NewErrorf(schema.ErrCodeInvalidInput, "%s must be positive, got %g", name, v)
		}
	}
	return nil
}
