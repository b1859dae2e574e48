package interaction

import (
	"github.com/penwyp/go-pm-timeline/internal/core/coords"
)

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// HoverChange is the result of feeding a pointer event to a Pointer.
type HoverChange struct {
	// Changed is true only on a hover transition.
	Changed bool
	// Item is the newly hovered item, nil when hover ended.
	Item *coords.Item
}

// Pointer tracks hover and drag-to-scroll state for one view.
type Pointer struct {
	hovered   *coords.Item
	dragging  bool
	dragLastX float64
}

// NewPointer creates an idle pointer tracker.
func NewPointer() *Pointer {
	return &Pointer{}
}

// Hovered returns the currently hovered item.
func (p *Pointer) Hovered() *coords.Item {
	return p.hovered
}

// Dragging reports whether a drag is in progress.
func (p *Pointer) Dragging() bool {
	return p.dragging
}

// Move processes a pointer move at client (x, y). While dragging it returns
// the horizontal scroll delta and leaves hover cleared.
func (p *Pointer) Move(v Viewport, items []coords.Item, x, y float64) (HoverChange, float64) {
	if p.dragging {
		delta := p.dragLastX - x
		p.dragLastX = x
		return p.set(nil), delta
	}

	var hit *coords.Item
	if v.InBody(x, y) {
		cx, cy := v.ToContent(x, y)
		hit = HitTest(items, cx, cy)
	}
	return p.set(hit), 0
}

// Leave ends hover when the pointer exits the view.
func (p *Pointer) Leave() HoverChange {
	p.dragging = false
	return p.set(nil)
}

// Scroll ends hover; any scroll invalidates the hovered item's position.
func (p *Pointer) Scroll() HoverChange {
	return p.set(nil)
}

// Down starts a drag when the left button is pressed over empty space.
// It returns whether a drag began.
func (p *Pointer) Down(v Viewport, items []coords.Item, button Button, x, y float64) bool {
	if button != ButtonLeft {
		return false
	}
	cx, cy := v.ToContent(x, y)
	if y >= v.HeaderHeight && HitTest(items, cx, cy) != nil {
		return false
	}
	p.dragging = true
	p.dragLastX = x
	return true
}

// Up ends a drag.
func (p *Pointer) Up() {
	p.dragging = false
}

func (p *Pointer) set(it *coords.Item) HoverChange {
	if sameItem(p.hovered, it) {
		return HoverChange{Item: p.hovered}
	}
	p.hovered = nil
	if it != nil {
		c := *it
		p.hovered = &c
	}
	return HoverChange{Changed: true, Item: p.hovered}
}

func sameItem(a, b *coords.Item) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Entry.ID == b.Entry.ID
}
