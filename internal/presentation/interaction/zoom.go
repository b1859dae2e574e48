package interaction

import "math"

// Default zoom bounds.
const (
	DefaultZoomStep = 1.15
	DefaultMinZoom  = 0.25
	DefaultMaxZoom  = 4
)

// Zoom is a clamped multiplicative zoom level.
type Zoom struct {
	level float64
	min   float64
	max   float64
	step  float64
}

// NewZoom creates a zoom at level 1 (clamped) with the given bounds. A step
// of 1 or less falls back to DefaultZoomStep.
func NewZoom(min, max, step float64) *Zoom {
	if min <= 0 {
		min = DefaultMinZoom
	}
	if max < min {
		max = min
	}
	if step <= 1 {
		step = DefaultZoomStep
	}
	z := &Zoom{min: min, max: max, step: step}
	z.level = z.clamp(1)
	return z
}

// Level returns the current zoom.
func (z *Zoom) Level() float64 { return z.level }

// Bounds returns the zoom range.
func (z *Zoom) Bounds() (float64, float64) { return z.min, z.max }

// In multiplies the zoom by one step. It reports whether the level changed.
func (z *Zoom) In() bool { return z.Set(z.level * z.step) }

// Out divides the zoom by one step. It reports whether the level changed.
func (z *Zoom) Out() bool { return z.Set(z.level / z.step) }

// Reset returns to level 1, clamped.
func (z *Zoom) Reset() bool { return z.Set(1) }

// Set moves to a clamped level and reports whether it changed.
func (z *Zoom) Set(level float64) bool {
	next := z.clamp(level)
	if next == z.level {
		return false
	}
	z.level = next
	return true
}

func (z *Zoom) clamp(v float64) float64 {
	return math.Min(math.Max(v, z.min), z.max)
}

// ScrollForZoom keeps the content point under anchorX (client x) fixed when
// the content width changes from oldWidth to newWidth.
func ScrollForZoom(v Viewport, anchorX, oldWidth, newWidth float64) float64 {
	if oldWidth <= 0 {
		return v.ClampScroll(v.ScrollX)
	}
	cx, _ := v.ToContent(anchorX, 0)
	ratio := newWidth / oldWidth
	next := cx*ratio + v.Padding - anchorX
	v.ContentWidth = newWidth + 2*v.Padding
	return v.ClampScroll(next)
}
