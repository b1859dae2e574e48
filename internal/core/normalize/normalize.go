package normalize

import (
	"strings"
	"time"

	"github.com/penwyp/go-pm-timeline/internal/core/model"
	"github.com/penwyp/go-pm-timeline/internal/core/timeline"
	"github.com/penwyp/go-pm-timeline/internal/util"
)

// Reasons a record is dropped.
const (
	ReasonMissingID   = "missing id"
	ReasonMissingName = "missing name"
	ReasonNoDates     = "no usable dates"
	ReasonDuplicateID = "duplicate id"
)

// Dropped describes a record excluded during normalization.
type Dropped struct {
	Index  int
	ID     string
	Reason string
}

// Result holds the valid entries in input order and the records dropped.
type Result struct {
	Entries []model.Entry
	Dropped []Dropped
}

// Normalize converts one raw record into an entry. ok is false when the record
// lacks an id, a name, or any usable date. today is the reference day for
// lateness and progress.
func Normalize(raw model.RawRecord, today time.Time) (model.Entry, bool) {
	entry, reason := normalize(raw, today)
	return entry, reason == ""
}

// All normalizes every record, keeping the first occurrence of each id.
func All(raws []model.RawRecord, today time.Time) Result {
	res := Result{Entries: make([]model.Entry, 0, len(raws))}
	seen := make(map[string]struct{}, len(raws))

	for i, raw := range raws {
		entry, reason := normalize(raw, today)
		if reason == "" {
			if _, dup := seen[entry.ID]; dup {
				reason = ReasonDuplicateID
			}
		}
		if reason != "" {
			util.LogDebug("record dropped", util.F("index", i), util.F("id", raw.ID.String()), util.F("reason", reason))
			res.Dropped = append(res.Dropped, Dropped{Index: i, ID: raw.ID.String(), Reason: reason})
			continue
		}
		seen[entry.ID] = struct{}{}
		res.Entries = append(res.Entries, entry)
	}

	if len(res.Dropped) > 0 {
		util.LogDebugf("normalized %d records, dropped %d", len(raws), len(res.Dropped))
	}
	return res
}

func normalize(raw model.RawRecord, today time.Time) (model.Entry, string) {
	id := strings.TrimSpace(raw.ID.String())
	if id == "" {
		return model.Entry{}, ReasonMissingID
	}
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return model.Entry{}, ReasonMissingName
	}

	entry := model.Entry{
		ID:       id,
		Name:     name,
		IssueKey: strings.TrimSpace(raw.IssueKey),
		Status:   strings.TrimSpace(raw.Status),
	}
	entry.Color = model.StatusColor(entry.Status)
	entry.CreatedDate = optionalDate(raw.CreatedDate)
	entry.ResolvedDate = optionalDate(raw.ResolvedDate)

	start, hasStart := timeline.ParseDate(raw.StartDate)
	due, hasDue := timeline.ParseDate(raw.DueDate)

	switch {
	case hasStart && hasDue && due.After(start):
		entry.Kind = model.KindRange
		entry.StartDate = start
		entry.EndDate = due
	case entry.CreatedDate != nil:
		// A due date on or before the start also lands here.
		entry.Kind = model.KindMilestone
		entry.StartDate = timeline.AddDays(*entry.CreatedDate, -1)
		entry.EndDate = timeline.AddDays(*entry.CreatedDate, 1)
	default:
		return model.Entry{}, ReasonNoDates
	}

	today = timeline.Day(today)
	entry.Duration = max(0, timeline.DaysBetween(entry.StartDate, entry.EndDate))
	entry.LateTime = lateTime(entry.EndDate, entry.ResolvedDate, today)
	entry.Progress = progress(entry, today)
	return entry, ""
}

func optionalDate(s string) *time.Time {
	t, ok := timeline.ParseDate(s)
	if !ok {
		return nil
	}
	return &t
}

// lateTime is positive when finished (or still open) before due, negative
// when overdue and nil when not yet due and unresolved.
func lateTime(due time.Time, resolved *time.Time, today time.Time) *int {
	var days int
	switch {
	case resolved != nil:
		days = timeline.DaysBetween(*resolved, due)
	case today.After(due):
		days = timeline.DaysBetween(today, due)
	default:
		return nil
	}
	return &days
}

func progress(e model.Entry, today time.Time) float64 {
	if e.ResolvedDate != nil {
		return 1
	}
	total := timeline.FractionalDays(e.StartDate, e.EndDate)
	if total <= 0 || !today.After(e.StartDate) {
		return 0
	}
	return min(1, timeline.FractionalDays(e.StartDate, today)/total)
}
