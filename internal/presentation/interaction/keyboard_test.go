package interaction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/penwyp/go-pm-timeline/internal/core/model"
)

func TestKeyboardReader(t *testing.T) {
	kr := &KeyboardReader{
		input: make(chan KeyEvent, 10),
		stop:  make(chan struct{}),
	}

	tests := []struct {
		name     string
		input    []byte
		expected *KeyEvent
	}{
		{name: "regular_char", input: []byte{'a'}, expected: &KeyEvent{Key: 'a', Type: KeyChar}},
		{name: "escape", input: []byte{27}, expected: &KeyEvent{Key: 27, Type: KeyEscape}},
		{name: "ctrl_c", input: []byte{3}, expected: &KeyEvent{Key: 3, Type: KeyChar}},
		{name: "enter", input: []byte{'\r'}, expected: &KeyEvent{Key: '\r', Type: KeyEnter}},
		{name: "arrow_left", input: []byte{27, '[', 'D'}, expected: &KeyEvent{Type: KeyLeft}},
		{name: "arrow_right", input: []byte{27, '[', 'C'}, expected: &KeyEvent{Type: KeyRight}},
		{name: "arrow_up", input: []byte{27, '[', 'A'}, expected: &KeyEvent{Type: KeyUp}},
		{name: "unknown_sequence", input: []byte{27, '[', 'Z'}, expected: nil},
		{name: "empty", input: nil, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := kr.parseInput(tt.input)
			assert.Equal(t, tt.expected, event)
		})
	}
}

func TestActionFor(t *testing.T) {
	tests := []struct {
		name string
		ev   KeyEvent
		want Action
	}{
		{name: "quit_q", ev: KeyEvent{Key: 'q', Type: KeyChar}, want: ActionQuit},
		{name: "quit_escape", ev: KeyEvent{Key: 27, Type: KeyEscape}, want: ActionQuit},
		{name: "quit_ctrl_c", ev: KeyEvent{Key: 3, Type: KeyChar}, want: ActionQuit},
		{name: "zoom_in", ev: KeyEvent{Key: '+', Type: KeyChar}, want: ActionZoomIn},
		{name: "zoom_in_equals", ev: KeyEvent{Key: '=', Type: KeyChar}, want: ActionZoomIn},
		{name: "zoom_out", ev: KeyEvent{Key: '-', Type: KeyChar}, want: ActionZoomOut},
		{name: "zoom_reset", ev: KeyEvent{Key: '0', Type: KeyChar}, want: ActionZoomReset},
		{name: "scroll_left_h", ev: KeyEvent{Key: 'h', Type: KeyChar}, want: ActionScrollLeft},
		{name: "scroll_right_arrow", ev: KeyEvent{Type: KeyRight}, want: ActionScrollRight},
		{name: "scroll_down_shift_j", ev: KeyEvent{Key: 'J', Type: KeyChar}, want: ActionScrollDown},
		{name: "scroll_up_shift_k", ev: KeyEvent{Key: 'K', Type: KeyChar}, want: ActionScrollUp},
		{name: "today", ev: KeyEvent{Key: 't', Type: KeyChar}, want: ActionToday},
		{name: "next_item", ev: KeyEvent{Key: 'n', Type: KeyChar}, want: ActionNextItem},
		{name: "prev_item_arrow", ev: KeyEvent{Type: KeyUp}, want: ActionPrevItem},
		{name: "open", ev: KeyEvent{Key: '\r', Type: KeyEnter}, want: ActionOpen},
		{name: "help", ev: KeyEvent{Key: '?', Type: KeyChar}, want: ActionHelp},
		{name: "unbound", ev: KeyEvent{Key: 'x', Type: KeyChar}, want: ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ActionFor(tt.ev))
		})
	}
}

func TestEntrySorter(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	late := func(v int) *int { return &v }

	entries := func() []model.LayoutEntry {
		return []model.LayoutEntry{
			{Entry: model.Entry{ID: "c", Name: "charlie", StartDate: day(3)}, Row: 1},
			{Entry: model.Entry{ID: "a", Name: "Alpha", StartDate: day(5), LateTime: late(-4)}, Row: 0},
			{Entry: model.Entry{ID: "b", Name: "bravo", StartDate: day(1), LateTime: late(2)}, Row: 0},
		}
	}
	ids := func(es []model.LayoutEntry) []string {
		out := make([]string, len(es))
		for i, e := range es {
			out[i] = e.ID
		}
		return out
	}

	tests := []struct {
		name  string
		field SortField
		order SortOrder
		want  []string
	}{
		{name: "row_then_start", field: SortByRow, want: []string{"b", "a", "c"}},
		{name: "start", field: SortByStart, want: []string{"b", "c", "a"}},
		{name: "name_case_insensitive", field: SortByName, want: []string{"a", "b", "c"}},
		{name: "late_unknown_last", field: SortByLate, want: []string{"a", "b", "c"}},
		{name: "start_descending", field: SortByStart, order: SortDescending, want: []string{"a", "c", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			es := entries()
			s := NewEntrySorter()
			s.SetField(tt.field)
			s.SetOrder(tt.order)
			s.Sort(es)
			assert.Equal(t, tt.want, ids(es))
		})
	}

	assert.Equal(t, SortByStart, ParseSortField(" Start "))
	assert.Equal(t, SortByRow, ParseSortField("bogus"))
}
