package coords

import (
	"math"
	"time"

	"github.com/penwyp/go-pm-timeline/internal/core/timeline"
)

// minScale keeps pixel/day conversions finite for empty or collapsed spaces.
const minScale = 1e-6

// Scale holds the inputs that determine horizontal geometry.
type Scale struct {
	PixelsPerDay      float64 // base scale at zoom 1
	ZoomLevel         float64
	ViewportWidth     float64 // visible width including padding
	HorizontalPadding float64
}

// Space is the pixel coordinate system derived from a date range. X values
// are content coordinates: 0 is Start, padding excluded.
type Space struct {
	Start        time.Time
	End          time.Time
	TotalDays    float64
	PixelsPerDay float64
	AutoFit      float64
	Periods      []timeline.Period
	ContentWidth float64
	Padding      float64
	TotalWidth   float64
}

// NewSpace derives the space for r. When the natural width at the current
// zoom is narrower than the viewport, the scale is stretched to fill it.
func NewSpace(r timeline.DateRange, s Scale) Space {
	zoom := s.ZoomLevel
	if zoom <= 0 {
		zoom = 1
	}
	padding := math.Max(0, s.HorizontalPadding)
	totalDays := math.Max(0, r.TotalDays())

	ppd := s.PixelsPerDay * zoom
	natural := totalDays * ppd
	available := s.ViewportWidth - 2*padding

	autoFit := 1.0
	if natural > 0 && available > natural {
		autoFit = available / natural
	}
	ppd *= autoFit

	periods := timeline.GeneratePeriods(r, ppd)
	content := timeline.PeriodsWidth(periods)

	return Space{
		Start:        r.Start,
		End:          r.End,
		TotalDays:    totalDays,
		PixelsPerDay: ppd,
		AutoFit:      autoFit,
		Periods:      periods,
		ContentWidth: content,
		Padding:      padding,
		TotalWidth:   content + 2*padding,
	}
}

// X maps a date to its content x coordinate.
func (s Space) X(t time.Time) float64 {
	return timeline.FractionalDays(s.Start, t) * s.PixelsPerDay
}

// DateAt maps a content x coordinate back to a calendar day. A collapsed
// space maps everything to Start.
func (s Space) DateAt(x float64) time.Time {
	if s.PixelsPerDay < minScale {
		return s.Start
	}
	days := x / s.PixelsPerDay
	return timeline.Day(s.Start.Add(time.Duration(days * float64(24*time.Hour))))
}

// MinWidth is the narrowest a range bar may be drawn.
func (s Space) MinWidth() float64 {
	return s.ContentWidth * 0.005
}

// TodayX returns the marker position for today, or false when today lies
// outside the space.
func (s Space) TodayX(today time.Time) (float64, bool) {
	if today.Before(s.Start) || today.After(s.End) {
		return 0, false
	}
	return s.X(today), true
}

// PeriodOffsets returns the content x at which each period begins.
func (s Space) PeriodOffsets() []float64 {
	offsets := make([]float64, len(s.Periods))
	x := 0.0
	for i, p := range s.Periods {
		offsets[i] = x
		x += p.Width
	}
	return offsets
}
