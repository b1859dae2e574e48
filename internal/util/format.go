package util

import (
	"fmt"
	"time"
)

// Date layouts shared by the table, tooltip and header output.
const (
	DateLayout      = "2006-01-02"
	MonthLabel      = "Jan 2006"
	ShortDateLayout = "Jan 2"
)

// FormatDate renders a calendar date, or "-" for the zero value.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(DateLayout)
}

// FormatDays renders a day count with the right plural.
func FormatDays(n int) string {
	if n == 1 || n == -1 {
		return fmt.Sprintf("%d day", n)
	}
	return fmt.Sprintf("%d days", n)
}

// FormatLateTime describes a signed lateness value: negative is overdue,
// positive is early, nil is unknown.
func FormatLateTime(late *int) string {
	if late == nil {
		return "-"
	}
	switch {
	case *late < 0:
		return FormatDays(-*late) + " late"
	case *late > 0:
		return FormatDays(*late) + " early"
	default:
		return "On time"
	}
}
