package interaction

import (
	"time"

	"github.com/penwyp/go-pm-timeline/internal/core/coords"
)

// DefaultAutoScrollDelay lets the first layout settle before scrolling.
const DefaultAutoScrollDelay = 300 * time.Millisecond

// AutoScroll centres the current date once per view.
type AutoScroll struct {
	enabled bool
	done    bool
}

// NewAutoScroll creates an auto-scroller.
func NewAutoScroll(enabled bool) *AutoScroll {
	return &AutoScroll{enabled: enabled}
}

// Claim reports whether the one-time scroll should run now and marks it as
// used. It only succeeds once a non-empty layout exists.
func (a *AutoScroll) Claim(itemCount int) bool {
	if !a.enabled || a.done || itemCount == 0 {
		return false
	}
	a.done = true
	return true
}

// Done reports whether the one-time scroll has been claimed.
func (a *AutoScroll) Done() bool {
	return a.done
}

// TodayScroll returns the scroll offset that centres today, and false when
// today lies outside the timeline.
func TodayScroll(v Viewport, space coords.Space, today time.Time) (float64, bool) {
	x, ok := space.TodayX(today)
	if !ok {
		return v.ScrollX, false
	}
	return v.CenterOn(x), true
}
