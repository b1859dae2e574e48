package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"
)

// RawRecord is one date-bearing record as supplied by the host. Dates are
// ISO-8601 strings; empty means absent.
type RawRecord struct {
	ID           FlexString `json:"id" yaml:"id"`
	Name         string     `json:"name" yaml:"name"`
	IssueKey     string     `json:"issueKey,omitempty" yaml:"issueKey,omitempty"`
	Status       string     `json:"status,omitempty" yaml:"status,omitempty"`
	StartDate    string     `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	DueDate      string     `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	ResolvedDate string     `json:"resolvedDate,omitempty" yaml:"resolvedDate,omitempty"`
	CreatedDate  string     `json:"createdDate,omitempty" yaml:"createdDate,omitempty"`
}

// FlexString accepts both JSON strings and numbers, so ids like 42 and "42"
// decode to the same value.
type FlexString string

func (fs *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*fs = ""
		return nil
	}

	var str string
	if err := sonic.Unmarshal(data, &str); err == nil {
		*fs = FlexString(str)
		return nil
	}

	var num float64
	if err := sonic.Unmarshal(data, &num); err == nil {
		*fs = FlexString(strings.TrimSpace(string(data)))
		return nil
	}

	return fmt.Errorf("id must be a string or a number, got %s", string(data))
}

func (fs *FlexString) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("id must be a scalar at line %d", node.Line)
	}
	if node.Tag == "!!null" {
		*fs = ""
		return nil
	}
	*fs = FlexString(node.Value)
	return nil
}

func (fs FlexString) String() string {
	return string(fs)
}

// Kind tags an entry as a bar or a point in time. It is decided once during
// normalization.
type Kind int

const (
	KindRange Kind = iota
	KindMilestone
)

func (k Kind) String() string {
	switch k {
	case KindRange:
		return "range"
	case KindMilestone:
		return "milestone"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Entry is a normalized timeline item. All dates are UTC midnight.
//
// For milestones StartDate and EndDate are the synthetic window
// CreatedDate-1d .. CreatedDate+1d and CreatedDate is the real instant.
type Entry struct {
	ID           string
	Name         string
	IssueKey     string
	Status       string
	Kind         Kind
	StartDate    time.Time
	EndDate      time.Time
	ResolvedDate *time.Time
	CreatedDate  *time.Time
	Duration     int
	LateTime     *int
	Progress     float64
	Color        string
}

// IsMilestone reports whether the entry renders as a point marker.
func (e Entry) IsMilestone() bool {
	return e.Kind == KindMilestone
}

// IsResolved reports whether the entry carries a resolution date.
func (e Entry) IsResolved() bool {
	return e.ResolvedDate != nil
}

// Instant is the date a milestone marks. Ranges report their start.
func (e Entry) Instant() time.Time {
	if e.Kind == KindMilestone && e.CreatedDate != nil {
		return *e.CreatedDate
	}
	return e.StartDate
}

// Raw returns the canonical raw form of the entry. Normalizing it again with
// the same reference day yields an equal entry.
func (e Entry) Raw() RawRecord {
	raw := RawRecord{
		ID:           FlexString(e.ID),
		Name:         e.Name,
		IssueKey:     e.IssueKey,
		Status:       e.Status,
		ResolvedDate: formatOptional(e.ResolvedDate),
		CreatedDate:  formatOptional(e.CreatedDate),
	}
	if e.Kind == KindRange {
		raw.StartDate = e.StartDate.Format(dateLayout)
		raw.DueDate = e.EndDate.Format(dateLayout)
	}
	return raw
}

// LayoutEntry is an entry with its assigned display row.
type LayoutEntry struct {
	Entry
	Row int
}

const dateLayout = "2006-01-02"

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
