package formatter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/penwyp/go-pm-timeline/internal/core/model"
	"github.com/penwyp/go-pm-timeline/internal/util"
)

// Row is one laid-out timeline entry in listing form.
type Row struct {
	Row      int     `json:"row"`
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	IssueKey string  `json:"issueKey,omitempty"`
	Kind     string  `json:"kind"`
	Status   string  `json:"status,omitempty"`
	Start    string  `json:"start"`
	End      string  `json:"end"`
	Resolved string  `json:"resolved,omitempty"`
	Duration int     `json:"duration"`
	LateTime *int    `json:"lateTime,omitempty"`
	Progress float64 `json:"progress"`
}

// Formatter writes a listing of rows.
type Formatter interface {
	Format(rows []Row) error
}

// New returns the formatter for a named output format writing to w.
func New(format string, w io.Writer) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", "table":
		return NewTableFormatter(w), nil
	case "json":
		return NewJSONFormatter(w), nil
	case "csv":
		return NewCSVFormatter(w), nil
	case "summary":
		return NewSummaryFormatter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// FromLayout converts layout entries in their current order. Milestones
// list their marked day as both start and end.
func FromLayout(entries []model.LayoutEntry) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		start, end := e.StartDate, e.EndDate
		if e.IsMilestone() {
			start, end = e.Instant(), e.Instant()
		}
		r := Row{
			Row:      e.Row,
			ID:       e.ID,
			Name:     e.Name,
			IssueKey: e.IssueKey,
			Kind:     e.Kind.String(),
			Status:   e.Status,
			Start:    formatDay(start),
			End:      formatDay(end),
			Duration: e.Duration,
			LateTime: e.LateTime,
			Progress: e.Progress,
		}
		if e.ResolvedDate != nil {
			r.Resolved = formatDay(*e.ResolvedDate)
		}
		rows = append(rows, r)
	}
	return rows
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(util.DateLayout)
}
