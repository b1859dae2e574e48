package interaction

import (
	"cmp"
	"math"
	"sort"
	"strings"

	"github.com/penwyp/go-pm-timeline/internal/core/model"
)

// SortField represents the field to sort entries by
type SortField int

const (
	SortByRow SortField = iota
	SortByStart
	SortByName
	SortByLate
)

// SortOrder represents the sort order
type SortOrder int

const (
	SortAscending SortOrder = iota
	SortDescending
)

// ParseSortField maps a flag value to a SortField. Unknown names sort by row.
func ParseSortField(name string) SortField {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "start":
		return SortByStart
	case "name":
		return SortByName
	case "late":
		return SortByLate
	default:
		return SortByRow
	}
}

// EntrySorter orders layout entries for listing and keyboard navigation.
type EntrySorter struct {
	field SortField
	order SortOrder
}

// NewEntrySorter creates a sorter ordering by row, then start date.
func NewEntrySorter() *EntrySorter {
	return &EntrySorter{
		field: SortByRow,
		order: SortAscending,
	}
}

// SetField changes the sort field
func (s *EntrySorter) SetField(field SortField) {
	s.field = field
}

// SetOrder changes the sort order
func (s *EntrySorter) SetOrder(order SortOrder) {
	s.order = order
}

// Sort sorts entries in place. Ties fall back to start date, then id.
func (s *EntrySorter) Sort(entries []model.LayoutEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		c := s.compare(a, b)
		if c == 0 {
			c = compareTime(a, b)
		}
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		if s.order == SortDescending {
			return c > 0
		}
		return c < 0
	})
}

func (s *EntrySorter) compare(a, b model.LayoutEntry) int {
	switch s.field {
	case SortByRow:
		return cmp.Compare(a.Row, b.Row)
	case SortByName:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case SortByLate:
		return cmp.Compare(lateValue(a), lateValue(b))
	default:
		return compareTime(a, b)
	}
}

func compareTime(a, b model.LayoutEntry) int {
	return a.StartDate.Compare(b.StartDate)
}

// lateValue orders the most overdue first; unknown lateness sorts last.
func lateValue(e model.LayoutEntry) int {
	if e.LateTime == nil {
		return math.MaxInt
	}
	return *e.LateTime
}
