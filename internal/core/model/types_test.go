package model

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFlexString_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    FlexString
		wantErr bool
	}{
		{name: "string_id", input: `{"id":"T-1"}`, want: "T-1"},
		{name: "integer_id", input: `{"id":42}`, want: "42"},
		{name: "null_id", input: `{"id":null}`, want: ""},
		{name: "object_id", input: `{"id":{"x":1}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec RawRecord
			err := sonic.Unmarshal([]byte(tt.input), &rec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.ID)
		})
	}
}

func TestFlexString_UnmarshalYAML(t *testing.T) {
	var recs []RawRecord
	input := `
- id: 7
  name: Kickoff
  createdDate: 2024-03-01
- id: "T-2"
  name: Build
  startDate: 2024-03-02
  dueDate: 2024-03-09
`
	require.NoError(t, yaml.Unmarshal([]byte(input), &recs))
	require.Len(t, recs, 2)
	assert.Equal(t, FlexString("7"), recs[0].ID)
	assert.Equal(t, "2024-03-01", recs[0].CreatedDate)
	assert.Equal(t, FlexString("T-2"), recs[1].ID)
	assert.Equal(t, "2024-03-09", recs[1].DueDate)
}

func TestEntry_Raw(t *testing.T) {
	created := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	t.Run("milestone_omits_synthetic_window", func(t *testing.T) {
		e := Entry{
			ID:          "m1",
			Name:        "Release",
			Kind:        KindMilestone,
			StartDate:   created.AddDate(0, 0, -1),
			EndDate:     created.AddDate(0, 0, 1),
			CreatedDate: &created,
		}
		raw := e.Raw()
		assert.Empty(t, raw.StartDate)
		assert.Empty(t, raw.DueDate)
		assert.Equal(t, "2024-06-15", raw.CreatedDate)
		assert.True(t, e.IsMilestone())
		assert.Equal(t, created, e.Instant())
	})

	t.Run("range_keeps_bounds", func(t *testing.T) {
		e := Entry{
			ID:        "r1",
			Name:      "Build",
			Kind:      KindRange,
			StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		}
		raw := e.Raw()
		assert.Equal(t, "2024-01-01", raw.StartDate)
		assert.Equal(t, "2024-01-10", raw.DueDate)
		assert.Empty(t, raw.ResolvedDate)
		assert.False(t, e.IsResolved())
	})
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "range", KindRange.String())
	assert.Equal(t, "milestone", KindMilestone.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}

func TestStatusColor(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{status: "Done", want: "#43a047"},
		{status: "  IN PROGRESS ", want: "#1e88e5"},
		{status: "blocked", want: "#e53935"},
		{status: "", want: DefaultColor},
		{status: "Someday", want: DefaultColor},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusColor(tt.status))
		})
	}
}
