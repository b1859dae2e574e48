package coords

import (
	"math"

	"github.com/penwyp/go-pm-timeline/internal/core/model"
)

// Rows describes the vertical grid.
type Rows struct {
	RowHeight     float64
	ItemHeight    float64
	ItemPadding   float64
	MilestoneSize float64
}

// Rect is an axis-aligned rectangle in content coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// Right returns the x of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Item is the on-canvas geometry of one layout entry.
//
// Ranges use Left/Width as the bar. Milestones have Width 0 and Left at the
// marked day; Size is the diamond's edge-to-edge extent.
type Item struct {
	Entry  model.LayoutEntry
	Left   float64
	Top    float64
	Width  float64
	Height float64
	Size   float64
}

// IsMilestone reports whether the item draws as a diamond.
func (it Item) IsMilestone() bool {
	return it.Entry.Kind == model.KindMilestone
}

// Center returns the visual center of the item.
func (it Item) Center() (float64, float64) {
	return it.Left + it.Width/2, it.Top + it.Height/2
}

// Bounds returns the drawn area of the item.
func (it Item) Bounds() Rect {
	if it.IsMilestone() {
		cx, cy := it.Center()
		return Rect{X: cx - it.Size/2, Y: cy - it.Size/2, W: it.Size, H: it.Size}
	}
	return Rect{X: it.Left, Y: it.Top, W: it.Width, H: it.Height}
}

// Geometry maps layout entries into pixel space.
func (s Space) Geometry(entries []model.LayoutEntry, rows Rows) []Item {
	size := rows.MilestoneSize
	if size <= 0 || size > rows.ItemHeight {
		size = rows.ItemHeight
	}
	minWidth := s.MinWidth()

	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		it := Item{
			Entry:  e,
			Top:    float64(e.Row)*rows.RowHeight + rows.ItemPadding,
			Height: rows.ItemHeight,
		}
		switch e.Kind {
		case model.KindMilestone:
			it.Left = s.X(e.Instant())
			it.Size = size
		default:
			it.Left = s.X(e.StartDate)
			it.Width = math.Max(s.X(e.EndDate)-it.Left, minWidth)
		}
		items = append(items, it)
	}
	return items
}

// ContentHeight returns the height needed for rowCount rows.
func (rows Rows) ContentHeight(rowCount int) float64 {
	return float64(rowCount) * rows.RowHeight
}

// RowAt returns the row index under content y, or -1 above the first row.
func (rows Rows) RowAt(y float64) int {
	if y < 0 || rows.RowHeight <= 0 {
		return -1
	}
	return int(y / rows.RowHeight)
}
