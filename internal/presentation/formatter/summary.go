package formatter

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// SummaryFormatter writes aggregate statistics of a layout.
type SummaryFormatter struct {
	w io.Writer
}

// NewSummaryFormatter creates a new instance of SummaryFormatter.
func NewSummaryFormatter(w io.Writer) *SummaryFormatter {
	return &SummaryFormatter{w: w}
}

// Stats aggregates a listing.
type Stats struct {
	Items      int
	Ranges     int
	Milestones int
	Rows       int
	Overdue    int
	Early      int
	First      string
	Last       string
	ByStatus   map[string]int
}

// Summarize computes Stats over rows.
func Summarize(rows []Row) Stats {
	s := Stats{ByStatus: make(map[string]int)}
	rowSet := make(map[int]struct{})
	for _, r := range rows {
		s.Items++
		if r.Kind == "milestone" {
			s.Milestones++
		} else {
			s.Ranges++
		}
		rowSet[r.Row] = struct{}{}
		if r.LateTime != nil {
			switch {
			case *r.LateTime < 0:
				s.Overdue++
			case *r.LateTime > 0:
				s.Early++
			}
		}
		status := strings.ToLower(strings.TrimSpace(r.Status))
		if status == "" {
			status = "(none)"
		}
		s.ByStatus[status]++

		// ISO dates compare lexically.
		if r.Start != "" && (s.First == "" || r.Start < s.First) {
			s.First = r.Start
		}
		if r.End > s.Last {
			s.Last = r.End
		}
	}
	s.Rows = len(rowSet)
	return s
}

// Format writes the summary report.
func (f *SummaryFormatter) Format(rows []Row) error {
	s := Summarize(rows)
	w := f.w

	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "Timeline Summary Report")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w)

	if s.Items == 0 {
		fmt.Fprintln(w, "No timeline items")
		fmt.Fprintln(w)
		fmt.Fprintln(w, strings.Repeat("=", 60))
		return nil
	}

	if s.First == s.Last {
		fmt.Fprintf(w, "Date Range: %s\n", s.First)
	} else {
		fmt.Fprintf(w, "Date Range: %s to %s\n", s.First, s.Last)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Items:")
	fmt.Fprintf(w, "  Total: %d\n", s.Items)
	fmt.Fprintf(w, "  Ranges: %d\n", s.Ranges)
	fmt.Fprintf(w, "  Milestones: %d\n", s.Milestones)
	fmt.Fprintf(w, "  Rows: %d\n", s.Rows)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Schedule:")
	fmt.Fprintf(w, "  Overdue: %d\n", s.Overdue)
	fmt.Fprintf(w, "  Early: %d\n", s.Early)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "By Status:")
	statuses := make([]string, 0, len(s.ByStatus))
	for status := range s.ByStatus {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		fmt.Fprintf(w, "  %-14s %d\n", status+":", s.ByStatus[status])
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	return nil
}
