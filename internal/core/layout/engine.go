package layout

import (
	"sort"
	"time"

	"github.com/penwyp/go-pm-timeline/internal/core/model"
	"github.com/penwyp/go-pm-timeline/internal/util"
)

// Span is the numeric form of an entry handed to the layout algorithm.
// Start and End are unix milliseconds; Index points back into the caller's
// entry slice.
type Span struct {
	Index int   `json:"index"`
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Placement is the row chosen for the span with the same Index.
type Placement struct {
	Index int `json:"index"`
	Row   int `json:"row"`
}

const dayMillis = int64(24 * time.Hour / time.Millisecond)

// Assign places every entry in the first row whose last occupant ends at or
// before the entry's start, opening a new row when none is free. Entries
// without a start date are skipped. The result is ordered by start date,
// ties keeping input order.
func Assign(entries []model.Entry) []model.LayoutEntry {
	spans := ToSpans(entries)
	placements := AssignSpans(spans)
	result := Apply(entries, placements)
	util.LogDebugf("layout: %d entries in %d rows", len(result), RowCount(result))
	return result
}

// ToSpans converts entries to spans sorted by start. Entries with a zero start
// date are left out.
func ToSpans(entries []model.Entry) []Span {
	spans := make([]Span, 0, len(entries))
	for i, e := range entries {
		if e.StartDate.IsZero() {
			continue
		}
		end := e.EndDate
		if end.IsZero() {
			end = e.StartDate.AddDate(0, 0, 1)
		}
		spans = append(spans, Span{Index: i, Start: e.StartDate.UnixMilli(), End: end.UnixMilli()})
	}
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].Start < spans[j].Start
	})
	return spans
}

// AssignSpans runs greedy interval partitioning over spans already sorted by
// start. Intervals are half-open, so a span may start exactly where the
// previous occupant of a row ends.
func AssignSpans(spans []Span) []Placement {
	placements := make([]Placement, 0, len(spans))
	var rowEnds []int64

	for _, s := range spans {
		end := s.End
		if end <= s.Start {
			end = s.Start + dayMillis
		}

		row := -1
		for r, rowEnd := range rowEnds {
			if rowEnd <= s.Start {
				row = r
				break
			}
		}
		if row == -1 {
			row = len(rowEnds)
			rowEnds = append(rowEnds, end)
		} else {
			rowEnds[row] = end
		}
		placements = append(placements, Placement{Index: s.Index, Row: row})
	}
	return placements
}

// Apply joins placements back onto their entries, keeping placement order.
func Apply(entries []model.Entry, placements []Placement) []model.LayoutEntry {
	result := make([]model.LayoutEntry, 0, len(placements))
	for _, p := range placements {
		if p.Index < 0 || p.Index >= len(entries) {
			continue
		}
		result = append(result, model.LayoutEntry{Entry: entries[p.Index], Row: p.Row})
	}
	return result
}

// RowCount returns the number of rows used by a layout.
func RowCount(entries []model.LayoutEntry) int {
	rows := 0
	for _, e := range entries {
		if e.Row+1 > rows {
			rows = e.Row + 1
		}
	}
	return rows
}
