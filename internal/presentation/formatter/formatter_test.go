package formatter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-pm-timeline/internal/core/model"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleEntries() []model.LayoutEntry {
	late := -5
	early := 2
	resolved := day(1, 8)
	created := day(3, 1)
	return []model.LayoutEntry{
		{Entry: model.Entry{
			ID: "1", Name: "Design", IssueKey: "PM-1", Kind: model.KindRange, Status: "Done",
			StartDate: day(1, 1), EndDate: day(1, 10), ResolvedDate: &resolved,
			Duration: 9, LateTime: &early, Progress: 1,
		}, Row: 0},
		{Entry: model.Entry{
			ID: "2", Name: "Build", Kind: model.KindRange, Status: "In Progress",
			StartDate: day(1, 5), EndDate: day(2, 1), Duration: 27, LateTime: &late, Progress: 0.5,
		}, Row: 1},
		{Entry: model.Entry{
			ID: "3", Name: "Launch", Kind: model.KindMilestone,
			StartDate: day(2, 29), EndDate: day(3, 2), CreatedDate: &created, Duration: 2,
		}, Row: 0},
	}
}

func TestFromLayout(t *testing.T) {
	rows := FromLayout(sampleEntries())
	require.Len(t, rows, 3)

	assert.Equal(t, Row{
		Row: 0, ID: "1", Name: "Design", IssueKey: "PM-1", Kind: "range", Status: "Done",
		Start: "2024-01-01", End: "2024-01-10", Resolved: "2024-01-08",
		Duration: 9, LateTime: rows[0].LateTime, Progress: 1,
	}, rows[0])
	assert.Equal(t, 2, *rows[0].LateTime)

	assert.Equal(t, "milestone", rows[2].Kind)
	assert.Equal(t, "2024-03-01", rows[2].Start)
	assert.Equal(t, "2024-03-01", rows[2].End)
	assert.Empty(t, rows[2].Resolved)
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	tests := []struct {
		format  string
		want    any
		wantErr bool
	}{
		{format: "", want: &TableFormatter{}},
		{format: "table", want: &TableFormatter{}},
		{format: "JSON", want: &JSONFormatter{}},
		{format: "csv", want: &CSVFormatter{}},
		{format: "summary", want: &SummaryFormatter{}},
		{format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("format_"+tt.format, func(t *testing.T) {
			f, err := New(tt.format, &buf)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, f)
		})
	}
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf).Format(FromLayout(sampleEntries())))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "┌"))
	assert.Contains(t, lines[1], "Name")
	assert.Contains(t, buf.String(), "5 days late")
	assert.Contains(t, buf.String(), "2 days early")
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "└"))

	// Every line has the same display width.
	width := len([]rune(lines[0]))
	for _, l := range lines {
		assert.Equal(t, width, len([]rune(l)), l)
	}

	// A separator is printed when the row number changes.
	assert.Equal(t, 3, strings.Count(buf.String(), "├"))
}

func TestTableFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf).Format(nil))
	assert.Contains(t, buf.String(), "No timeline items")
}

func TestTableFormatter_NameWidth(t *testing.T) {
	var buf bytes.Buffer
	f := NewTableFormatter(&buf)
	f.SetNameWidth(6)
	rows := []Row{{ID: "1", Name: "A rather long task name", Kind: "range"}}
	require.NoError(t, f.Format(rows))
	assert.Contains(t, buf.String(), "A rat…")
	assert.NotContains(t, buf.String(), "long task")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf).Format(FromLayout(sampleEntries())))

	var got []map[string]any
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "PM-1", got[0]["issueKey"])
	assert.Equal(t, float64(-5), got[1]["lateTime"])
	_, hasLate := got[2]["lateTime"]
	assert.False(t, hasLate)

	buf.Reset()
	require.NoError(t, NewJSONFormatter(&buf).Format(nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVFormatter(&buf).Format(FromLayout(sampleEntries())))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, "row", records[0][0])
	assert.Equal(t, []string{"1", "2", "Build", "", "range", "In Progress", "2024-01-05", "2024-02-01", "", "27", "-5", "0.50"}, records[2])
	assert.Equal(t, "", records[3][10])
}

func TestSummaryFormatter(t *testing.T) {
	rows := FromLayout(sampleEntries())
	s := Summarize(rows)
	assert.Equal(t, 3, s.Items)
	assert.Equal(t, 2, s.Ranges)
	assert.Equal(t, 1, s.Milestones)
	assert.Equal(t, 2, s.Rows)
	assert.Equal(t, 1, s.Overdue)
	assert.Equal(t, 1, s.Early)
	assert.Equal(t, "2024-01-01", s.First)
	assert.Equal(t, "2024-03-01", s.Last)
	assert.Equal(t, map[string]int{"done": 1, "in progress": 1, "(none)": 1}, s.ByStatus)

	var buf bytes.Buffer
	require.NoError(t, NewSummaryFormatter(&buf).Format(rows))
	out := buf.String()
	assert.Contains(t, out, "Date Range: 2024-01-01 to 2024-03-01")
	assert.Contains(t, out, "Milestones: 1")
	assert.Contains(t, out, "in progress:")

	buf.Reset()
	require.NoError(t, NewSummaryFormatter(&buf).Format(nil))
	assert.Contains(t, buf.String(), "No timeline items")
}
