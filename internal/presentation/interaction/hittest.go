package interaction

import (
	"math"

	"github.com/penwyp/go-pm-timeline/internal/core/coords"
)

// Viewport describes the visible window onto the timeline content.
type Viewport struct {
	Width        float64
	Height       float64
	HeaderHeight float64
	Padding      float64
	ScrollX      float64
	ScrollY      float64
	// ContentWidth is the full scrollable width, padding included.
	ContentWidth float64
	// ContentHeight is the height of all rows, header excluded.
	ContentHeight float64
}

// ToContent converts client (viewport) coordinates to content coordinates.
func (v Viewport) ToContent(clientX, clientY float64) (float64, float64) {
	return clientX + v.ScrollX - v.Padding, clientY + v.ScrollY - v.HeaderHeight
}

// ToClient converts content coordinates back to client coordinates.
func (v Viewport) ToClient(x, y float64) (float64, float64) {
	return x - v.ScrollX + v.Padding, y - v.ScrollY + v.HeaderHeight
}

// BodyHeight is the height of the row area below the header.
func (v Viewport) BodyHeight() float64 {
	return math.Max(0, v.Height-v.HeaderHeight)
}

// MaxScrollY is the largest valid vertical scroll offset.
func (v Viewport) MaxScrollY() float64 {
	return math.Max(0, v.ContentHeight-v.BodyHeight())
}

// ClampScrollY limits y to [0, MaxScrollY].
func (v Viewport) ClampScrollY(y float64) float64 {
	return math.Min(math.Max(0, y), v.MaxScrollY())
}

// RevealY returns the clamped vertical offset that brings the content band
// [top, bottom) fully into view, moving as little as possible.
func (v Viewport) RevealY(top, bottom float64) float64 {
	y := v.ScrollY
	switch {
	case top < y:
		y = top
	case bottom > y+v.BodyHeight():
		y = bottom - v.BodyHeight()
	}
	return v.ClampScrollY(y)
}

// InBody reports whether client point (x, y) lies in the row area.
func (v Viewport) InBody(x, y float64) bool {
	return x >= 0 && x <= v.Width && y >= v.HeaderHeight && y <= v.Height
}

// MaxScroll is the largest valid horizontal scroll offset.
func (v Viewport) MaxScroll() float64 {
	return math.Max(0, v.ContentWidth-v.Width)
}

// ClampScroll limits x to [0, MaxScroll].
func (v Viewport) ClampScroll(x float64) float64 {
	return math.Min(math.Max(0, x), v.MaxScroll())
}

// CenterOn returns the clamped scroll offset that puts content x in the
// middle of the viewport.
func (v Viewport) CenterOn(x float64) float64 {
	return v.ClampScroll(x + v.Padding - v.Width/2)
}

// HitTest returns the item under content point (x, y), or nil. Milestones
// are tested before ranges so a diamond sitting over a bar stays reachable.
func HitTest(items []coords.Item, x, y float64) *coords.Item {
	for i := range items {
		it := &items[i]
		if !it.IsMilestone() {
			continue
		}
		cx, cy := it.Center()
		if math.Abs(x-cx)+math.Abs(y-cy) <= it.Size/2 {
			return it
		}
	}
	for i := range items {
		it := &items[i]
		if it.IsMilestone() {
			continue
		}
		if it.Bounds().Contains(x, y) {
			return it
		}
	}
	return nil
}
