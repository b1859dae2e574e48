package timeline

import (
	"math"
	"strings"
	"time"
)

const hoursPerDay = 24

var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
}

// ParseDate parses an ISO-ish date string to UTC midnight of the written
// calendar day. ok is false for empty or malformed input.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range dateFormats {
		t, err := time.Parse(format, s)
		if err == nil {
			return Day(t), true
		}
	}
	return time.Time{}, false
}

// Day truncates t to UTC midnight of its calendar day, as written in t's own
// location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AddDays shifts a calendar date by n days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// DaysBetween returns b-a in whole days for calendar dates.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / hoursPerDay))
}

// FractionalDays returns b-a in days without rounding.
func FractionalDays(a, b time.Time) float64 {
	return b.Sub(a).Hours() / hoursPerDay
}

// MonthStart returns the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NextMonth returns the first day of the month after t's month.
func NextMonth(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, 0)
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	start := MonthStart(t)
	return DaysBetween(start, start.AddDate(0, 1, 0))
}
