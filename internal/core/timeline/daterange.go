package timeline

import (
	"time"

	"github.com/penwyp/go-pm-timeline/internal/core/model"
	"github.com/penwyp/go-pm-timeline/internal/util"
)

// DateRange is the month-aligned span covered by a set of entries.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// TotalDays returns End-Start in days.
func (r DateRange) TotalDays() float64 {
	return FractionalDays(r.Start, r.End)
}

// Contains reports whether t lies within [Start, End].
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Period is one calendar-month column. The trailing marker period has zero
// days and zero width and only carries the label of the end month.
type Period struct {
	Start  time.Time
	Days   int
	Width  float64
	Label  string
	Marker bool
}

// ComputeRange returns the month-aligned range covering every entry. With no
// entries it falls back to one month either side of today.
func ComputeRange(entries []model.Entry, today time.Time) DateRange {
	if len(entries) == 0 {
		return alignRange(today.AddDate(0, -1, 0), today.AddDate(0, 1, 0))
	}

	earliest := entries[0].StartDate
	latest := entries[0].EndDate
	for _, e := range entries[1:] {
		if e.StartDate.Before(earliest) {
			earliest = e.StartDate
		}
		if e.EndDate.After(latest) {
			latest = e.EndDate
		}
	}
	return alignRange(earliest, latest)
}

func alignRange(earliest, latest time.Time) DateRange {
	earliest, latest = Day(earliest), Day(latest)
	end := MonthStart(latest)
	if latest.Day() != 1 {
		end = NextMonth(latest)
	}
	return DateRange{Start: MonthStart(earliest), End: end}
}

// GeneratePeriods splits r into month periods at the given scale, followed by
// the zero-width end marker. A range with no whole month still yields one
// zero-width period before the marker.
func GeneratePeriods(r DateRange, pixelsPerDay float64) []Period {
	var periods []Period
	for m := MonthStart(r.Start); m.Before(r.End); m = NextMonth(m) {
		days := DaysInMonth(m)
		periods = append(periods, Period{
			Start: m,
			Days:  days,
			Width: float64(days) * pixelsPerDay,
			Label: m.Format(util.MonthLabel),
		})
	}

	if len(periods) == 0 {
		periods = append(periods, Period{
			Start: r.Start,
			Label: r.Start.Format(util.MonthLabel),
		})
	}

	return append(periods, Period{
		Start:  r.End,
		Label:  r.End.Format(util.MonthLabel),
		Marker: true,
	})
}

// PeriodsWidth sums the widths of ps.
func PeriodsWidth(ps []Period) float64 {
	var total float64
	for _, p := range ps {
		total += p.Width
	}
	return total
}
