package canvas

import "time"

// DefaultAnimationDuration is the length of the bar entrance animation.
const DefaultAnimationDuration = 600 * time.Millisecond

// EaseOutCubic maps linear progress t in [0,1] to 1-(1-t)^3.
func EaseOutCubic(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	u := 1 - t
	return 1 - u*u*u
}

// Animation tracks an entrance animation started at a fixed instant.
type Animation struct {
	Start    time.Time
	Duration time.Duration
}

// NewAnimation starts an animation at now.
func NewAnimation(now time.Time, d time.Duration) Animation {
	if d <= 0 {
		d = DefaultAnimationDuration
	}
	return Animation{Start: now, Duration: d}
}

// Progress returns the eased progress at now.
func (a Animation) Progress(now time.Time) float64 {
	if a.Duration <= 0 {
		return 1
	}
	return EaseOutCubic(float64(now.Sub(a.Start)) / float64(a.Duration))
}

// Done reports whether the animation has finished at now.
func (a Animation) Done(now time.Time) bool {
	return now.Sub(a.Start) >= a.Duration
}
