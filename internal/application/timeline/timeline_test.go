package timeline

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-pm-timeline/internal/core/layout"
	"github.com/penwyp/go-pm-timeline/internal/core/model"
	"github.com/penwyp/go-pm-timeline/internal/presentation/canvas"
	"github.com/penwyp/go-pm-timeline/internal/presentation/interaction"
	"github.com/penwyp/go-pm-timeline/internal/testing/fixtures"
)

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) Advance(d time.Duration) time.Time {
	c.now = c.now.Add(d)
	return c.now
}

type stubLayouter struct {
	err    error
	calls  int
	closed bool
}

func (s *stubLayouter) Layout(ctx context.Context, entries []model.Entry) ([]model.LayoutEntry, error) {
	s.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return layout.Assign(entries), nil
}

func (s *stubLayouter) Close() error {
	s.closed = true
	return nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.PixelsPerDay = 10
	cfg.HeaderHeight = 30
	cfg.HorizontalPadding = 20
	cfg.Timezone = "UTC"
	return cfg
}

// Scenario records: two overlapping ranges and a milestone on 2024-03-01.
// The space runs 2024-01-01..2024-04-01 at 10px/day, 910px of content.
func scenarioRecords() []model.RawRecord {
	return []model.RawRecord{
		{ID: "1", Name: "X", StartDate: "2024-01-01", DueDate: "2024-01-10", Status: "Done"},
		{ID: "2", Name: "Y", StartDate: "2024-01-05", DueDate: "2024-01-15"},
		{ID: "3", Name: "Launch", CreatedDate: "2024-03-01"},
	}
}

type harness struct {
	tl       *Timeline
	frames   *FrameQueue
	clock    *manualClock
	surface  *canvas.Recorder
	hovers   []*model.LayoutEntry
	opened   []model.LayoutEntry
	painted  int
	layouter *stubLayouter
}

func newHarness(t *testing.T, cfg Config, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		frames:   NewFrameQueue(),
		clock:    &manualClock{now: time.Date(2024, 2, 15, 9, 0, 0, 0, time.UTC)},
		surface:  canvas.NewRecorder(),
		layouter: &stubLayouter{},
	}
	base := []Option{
		WithClock(h.clock.Now),
		WithToday(func() time.Time { return fixtures.Day("2024-02-15") }),
		WithLayouter(h.layouter),
		WithHoverHandler(func(e *model.LayoutEntry) { h.hovers = append(h.hovers, e) }),
		WithDoubleClickHandler(func(e model.LayoutEntry) { h.opened = append(h.opened, e) }),
		WithPaintHandler(func(FrameInfo) { h.painted++ }),
	}
	tl, err := New(cfg, h.surface, h.frames, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { tl.Close() })
	tl.Resize(400, 300)
	h.tl = tl
	return h
}

func (h *harness) flush(d time.Duration) {
	h.frames.Flush(h.clock.Advance(d))
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.MinZoomLevel, cfg.MaxZoomLevel = 2, 1

	_, err := New(cfg, canvas.NewRecorder(), NewFrameQueue())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(testConfig(), nil, NewFrameQueue())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestTimeline_SetRecords(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.tl.SetRecords(context.Background(), scenarioRecords()))

	rows := map[string]int{}
	for _, e := range h.tl.Entries() {
		rows[e.ID] = e.Row
	}
	assert.Equal(t, map[string]int{"1": 0, "2": 1, "3": 0}, rows)

	space := h.tl.Space()
	assert.Equal(t, fixtures.Day("2024-01-01"), space.Start)
	assert.Equal(t, fixtures.Day("2024-04-01"), space.End)
	assert.InDelta(t, 910, space.ContentWidth, 1e-9)

	items := h.tl.Items()
	require.Len(t, items, 3)
	byID := map[string]int{}
	for i, it := range items {
		byID[it.Entry.ID] = i
	}
	x := items[byID["1"]]
	assert.Equal(t, 0.0, x.Left)
	assert.InDelta(t, 90, x.Width, 1e-9)
	assert.Equal(t, 8.0, x.Top)
	launch := items[byID["3"]]
	assert.True(t, launch.IsMilestone())
	assert.InDelta(t, 600, launch.Left, 1e-9)

	snap := h.tl.Snapshot()
	assert.Equal(t, 2, snap.RowCount)
	assert.Empty(t, snap.Dropped)
	assert.Equal(t, h.clock.now, snap.UpdatedAt)
	assert.Equal(t, StateAnimating, h.tl.LoopState())
	assert.Zero(t, h.layouter.calls)
}

func TestTimeline_SetRecordsDropsInvalid(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.tl.SetRecords(context.Background(), fixtures.SampleProject()))

	snap := h.tl.Snapshot()
	assert.Len(t, snap.Entries, 7)
	assert.Len(t, snap.Dropped, 2)
}

func TestTimeline_LayoutPool(t *testing.T) {
	t.Run("used_above_threshold", func(t *testing.T) {
		cfg := testConfig()
		cfg.WorkerThreshold = 1
		h := newHarness(t, cfg)

		require.NoError(t, h.tl.SetRecords(context.Background(), scenarioRecords()))
		assert.Equal(t, 1, h.layouter.calls)
		assert.Len(t, h.tl.Entries(), 3)
	})

	t.Run("falls_back_on_failure", func(t *testing.T) {
		cfg := testConfig()
		cfg.WorkerThreshold = 1
		h := newHarness(t, cfg)
		h.layouter.err = layout.ErrRequestTimeout

		require.NoError(t, h.tl.SetRecords(context.Background(), scenarioRecords()))
		assert.Equal(t, 1, h.layouter.calls)
		assert.Len(t, h.tl.Entries(), 3)
		assert.Equal(t, 2, h.tl.Snapshot().RowCount)
	})

	t.Run("cancelled_context", func(t *testing.T) {
		cfg := testConfig()
		cfg.WorkerThreshold = 1
		h := newHarness(t, cfg)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := h.tl.SetRecords(ctx, scenarioRecords())
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Empty(t, h.tl.Entries())
	})

	t.Run("real_pool_matches_inline_layout", func(t *testing.T) {
		cfg := testConfig()
		cfg.WorkerThreshold = 10
		tl, err := New(cfg, canvas.NewRecorder(), NewFrameQueue())
		require.NoError(t, err)
		defer tl.Close()

		records := fixtures.NewRecordGenerator(t.TempDir(), 7).Random(200, "2024-01-01", 180)
		require.NoError(t, tl.SetRecords(context.Background(), records))

		entries := tl.Entries()
		require.Len(t, entries, 200)
		for i := range entries {
			for j := i + 1; j < len(entries); j++ {
				a, b := entries[i], entries[j]
				if a.Row != b.Row {
					continue
				}
				overlap := a.StartDate.Before(b.EndDate) && b.StartDate.Before(a.EndDate)
				assert.False(t, overlap, "%s and %s share row %d", a.ID, b.ID, a.Row)
			}
		}
	})
}

func TestTimeline_Close(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.tl.Close())
	assert.True(t, h.layouter.closed)
	assert.Zero(t, h.frames.Pending())
}

func TestTimeline_Zoom(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.tl.SetRecords(context.Background(), scenarioRecords()))
	h.flush(time.Second)

	// Auto-scroll has centred today (content x 450).
	require.Equal(t, 270.0, h.tl.Viewport().ScrollX)

	require.True(t, h.tl.ZoomIn())
	assert.InDelta(t, 1.15, h.tl.ZoomLevel(), 1e-9)
	assert.InDelta(t, 1046.5, h.tl.Space().ContentWidth, 1e-6)
	// The day under the viewport centre stays there: 450*1.15 + 20 - 200.
	assert.InDelta(t, 337.5, h.tl.Viewport().ScrollX, 1e-6)
	assert.Equal(t, StateZooming, h.tl.LoopState())

	h.flush(100 * time.Millisecond)
	assert.Equal(t, StateZooming, h.tl.LoopState())
	h.flush(150 * time.Millisecond)
	assert.Equal(t, StateIdle, h.tl.LoopState())

	for i := 0; i < 30; i++ {
		h.tl.ZoomIn()
	}
	assert.Equal(t, 4.0, h.tl.ZoomLevel())
	assert.False(t, h.tl.ZoomIn())

	for i := 0; i < 30; i++ {
		h.tl.ZoomOut()
	}
	assert.Equal(t, 0.25, h.tl.ZoomLevel())
	assert.False(t, h.tl.ZoomOut())

	assert.True(t, h.tl.ResetZoom())
	assert.Equal(t, 1.0, h.tl.ZoomLevel())
}

func TestTimeline_SetZoom(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.tl.SetRecords(context.Background(), scenarioRecords()))
	h.flush(time.Second)

	require.True(t, h.tl.SetZoom(2))
	assert.Equal(t, 2.0, h.tl.ZoomLevel())
	assert.InDelta(t, 1820, h.tl.Space().ContentWidth, 1e-6)
	assert.Equal(t, StateIdle, h.tl.LoopState())
	assert.False(t, h.tl.Scene(FrameInfo{Progress: 1}).Zooming)
	assert.False(t, h.tl.SetZoom(2))

	require.True(t, h.tl.SetZoom(100))
	assert.Equal(t, 4.0, h.tl.ZoomLevel())
	require.True(t, h.tl.SetZoom(0.01))
	assert.Equal(t, 0.25, h.tl.ZoomLevel())
}

func TestTimeline_ZoomOutAutoFits(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.tl.SetRecords(context.Background(), scenarioRecords()))

	for h.tl.ZoomOut() {
	}
	space := h.tl.Space()
	// 910px at zoom 0.25 is narrower than the 360px of usable width, so the
	// scale stretches to fill it.
	assert.Greater(t, space.AutoFit, 1.0)
	assert.InDelta(t, 360, space.ContentWidth, 1e-6)
	assert.Equal(t, 0.0, h.tl.Viewport().MaxScroll())
}

func TestTimeline_Hover(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.tl.SetRecords(context.Background(), scenarioRecords()))

	// Bar X spans content x 0..90 in row 0 (y 8..32).
	h.tl.PointerMove(65, 50)
	require.Len(t, h.hovers, 1)
	require.NotNil(t, h.hovers[0])
	assert.Equal(t, "1", h.hovers[0].ID)
	tt := h.tl.Tooltip()
	require.NotNil(t, tt)
	assert.Equal(t, "X", tt.Title)
	assert.Equal(t, "Start", tt.Lines[0].Label)

	// Moving within the same item is not a transition.
	h.tl.PointerMove(70, 52)
	assert.Len(t, h.hovers, 1)

	sc := h.tl.Scene(FrameInfo{Progress: 1})
	assert.Equal(t, "1", sc.HoverID)
	assert.Equal(t, 0, sc.HoverRow)
	assert.NotNil(t, sc.Tooltip)

	// Empty space ends hover.
	h.tl.PointerMove(320, 130)
	require.Len(t, h.hovers, 2)
	assert.Nil(t, h.hovers[1])
	assert.Nil(t, h.tl.Tooltip())

	// Scrolling ends hover.
	h.tl.PointerMove(65, 50)
	h.tl.ScrollBy(10)
	require.Len(t, h.hovers, 4)
	assert.Nil(t, h.hovers[3])
	assert.Nil(t, h.tl.Hovered())

	// So does leaving the view.
	h.tl.ScrollTo(0)
	h.tl.PointerMove(65, 50)
	h.tl.PointerLeave()
	assert.Nil(t, h.hovers[len(h.hovers)-1])
}

func TestTimeline_MilestoneHover(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.tl.SetRecords(context.Background(), scenarioRecords()))

	h.tl.ScrollTo(400)
	// Launch is centred on content (600, 20), client (220, 50).
	h.tl.PointerMove(222, 51)
	hovered := h.tl.Hovered()
	require.NotNil(t, hovered)
	assert.Equal(t, "3", hovered.ID)
	require.NotNil(t, h.tl.Tooltip())
	assert.Equal(t, "Date", h.tl.Tooltip().Lines[0].Label)
	assert.Equal(t, "2024-03-01", h.tl.Tooltip().Lines[0].Value)
}

func TestTimeline_DragToScroll(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.tl.SetRecords(context.Background(), scenarioRecords()))

	assert.False(t, h.tl.PointerDown(interaction.ButtonLeft, 65, 50), "press on an item")
	assert.False(t, h.tl.PointerDown(interaction.ButtonRight, 320, 130))
	require.True(t, h.tl.PointerDown(interaction.ButtonLeft, 320, 130))

	h.tl.PointerMove(300, 130)
	assert.Equal(t, 20.0, h.tl.Viewport().ScrollX)
	h.tl.PointerMove(65, 50)
	assert.Equal(t, 255.0, h.tl.Viewport().ScrollX)
	assert.Nil(t, h.tl.Hovered(), "no hover while dragging")

	h.tl.PointerUp()
	h.tl.PointerMove(0, 130)
	assert.Equal(t, 255.0, h.tl.Viewport().ScrollX)
}

func TestTimeline_DoubleClick(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.tl.SetRecords(context.Background(), scenarioRecords()))

	assert.True(t, h.tl.DoubleClick(65, 50))
	require.Len(t, h.opened, 1)
	assert.Equal(t, "X", h.opened[0].Name)

	assert.False(t, h.tl.DoubleClick(320, 130))
	assert.False(t, h.tl.DoubleClick(65, 10), "header")
	assert.Len(t, h.opened, 1)
}

func TestTimeline_AutoScrollOnce(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.tl.SetRecords(context.Background(), scenarioRecords()))

	h.flush(16 * time.Millisecond)
	assert.Equal(t, 0.0, h.tl.Viewport().ScrollX)

	// Today (2024-02-15) is content x 450; centring it needs 450+20-200.
	h.flush(300 * time.Millisecond)
	assert.Equal(t, 270.0, h.tl.Viewport().ScrollX)

	h.tl.ScrollTo(0)
	require.NoError(t, h.tl.SetRecords(context.Background(), scenarioRecords()))
	h.flush(time.Second)
	h.flush(time.Second)
	assert.Equal(t, 0.0, h.tl.Viewport().ScrollX)
}

func TestTimeline_AutoScrollWaitsForItems(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.tl.SetRecords(context.Background(), nil))
	h.flush(time.Second)

	require.NoError(t, h.tl.SetRecords(context.Background(), scenarioRecords()))
	h.flush(time.Second)
	assert.Equal(t, 270.0, h.tl.Viewport().ScrollX)
}

func TestTimeline_AutoScrollDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.EnableAutoScroll = false
	h := newHarness(t, cfg)
	require.NoError(t, h.tl.SetRecords(context.Background(), scenarioRecords()))
	h.flush(time.Second)
	h.flush(time.Second)
	assert.Equal(t, 0.0, h.tl.Viewport().ScrollX)
}

func TestTimeline_ScrollToToday(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.tl.SetRecords(context.Background(), scenarioRecords()))

	assert.True(t, h.tl.ScrollToToday())
	assert.Equal(t, 270.0, h.tl.Viewport().ScrollX)

	far := newHarness(t, testConfig(), WithToday(func() time.Time { return fixtures.Day("2025-06-01") }))
	require.NoError(t, far.tl.SetRecords(context.Background(), scenarioRecords()))
	assert.False(t, far.tl.ScrollToToday())
	assert.Equal(t, 0.0, far.tl.Viewport().ScrollX)
}

func TestTimeline_ScrollClamps(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.tl.SetRecords(context.Background(), scenarioRecords()))

	h.tl.ScrollTo(-50)
	assert.Equal(t, 0.0, h.tl.Viewport().ScrollX)
	h.tl.ScrollTo(5000)
	assert.Equal(t, 550.0, h.tl.Viewport().ScrollX)

	// Growing the viewport re-clamps the offset.
	h.tl.Resize(800, 300)
	assert.Equal(t, 150.0, h.tl.Viewport().ScrollX)
}

func TestTimeline_HoverNext(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.tl.SetRecords(context.Background(), scenarioRecords()))

	hovered := func() string {
		if e := h.tl.Hovered(); e != nil {
			return e.ID
		}
		return ""
	}

	require.True(t, h.tl.HoverNext(1))
	assert.Equal(t, "1", hovered())
	require.True(t, h.tl.HoverNext(1))
	assert.Equal(t, "2", hovered())

	// Launch lies off screen; it is scrolled into the middle.
	require.True(t, h.tl.HoverNext(1))
	assert.Equal(t, "3", hovered())
	assert.Equal(t, 420.0, h.tl.Viewport().ScrollX)

	require.True(t, h.tl.HoverNext(1))
	assert.Equal(t, "1", hovered())
	assert.Equal(t, 0.0, h.tl.Viewport().ScrollX)

	require.True(t, h.tl.HoverNext(-1))
	assert.Equal(t, "3", hovered())

	assert.True(t, h.tl.OpenHovered())
	require.Len(t, h.opened, 1)
	assert.Equal(t, "Launch", h.opened[0].Name)
}

// staircaseRecords returns n mutually overlapping ranges, one per row.
func staircaseRecords(n int) []model.RawRecord {
	start := fixtures.Day("2024-01-01")
	raws := make([]model.RawRecord, n)
	for i := range raws {
		raws[i] = model.RawRecord{
			ID:        model.FlexString(strconv.Itoa(i)),
			Name:      "Task " + strconv.Itoa(i),
			StartDate: start.AddDate(0, 0, i).Format("2006-01-02"),
			DueDate:   "2024-01-20",
		}
	}
	return raws
}

func TestTimeline_HoverNextScrollsRowsIntoView(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.tl.SetRecords(context.Background(), staircaseRecords(10)))
	require.Equal(t, 10, h.tl.Snapshot().RowCount)

	// 300px view, 30px header, 40px rows: only rows 0-6 fit.
	v := h.tl.Viewport()
	assert.Equal(t, 400.0, v.ContentHeight)
	assert.Equal(t, 130.0, v.MaxScrollY())

	for i := 0; i < 10; i++ {
		require.True(t, h.tl.HoverNext(1), "step %d", i)
		hovered := h.tl.Hovered()
		require.NotNil(t, hovered)
		assert.Equal(t, strconv.Itoa(i), hovered.ID)
		assert.Equal(t, i, hovered.Row)
	}
	assert.Equal(t, 130.0, h.tl.Viewport().ScrollY)

	// Wrapping back to the first row scrolls up again.
	require.True(t, h.tl.HoverNext(1))
	assert.Equal(t, "0", h.tl.Hovered().ID)
	assert.Equal(t, 0.0, h.tl.Viewport().ScrollY)

	require.True(t, h.tl.HoverNext(-1))
	assert.Equal(t, "9", h.tl.Hovered().ID)
	assert.Equal(t, 130.0, h.tl.Viewport().ScrollY)
}

func TestTimeline_ScrollRows(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.tl.SetRecords(context.Background(), staircaseRecords(10)))

	h.tl.ScrollRowsBy(2)
	assert.Equal(t, 80.0, h.tl.Viewport().ScrollY)
	assert.Equal(t, 80.0, h.tl.Scene(FrameInfo{Progress: 1}).ScrollY)

	// A point in the first visible row hits row 2.
	h.tl.PointerMove(100, 50)
	require.NotNil(t, h.tl.Hovered())
	assert.Equal(t, 2, h.tl.Hovered().Row)

	// Row 1 sits under the header now and cannot be hit through it.
	h.tl.PointerMove(100, 10)
	assert.Nil(t, h.tl.Hovered())
	assert.False(t, h.tl.DoubleClick(100, 10))

	h.tl.ScrollRowsBy(10)
	assert.Equal(t, 130.0, h.tl.Viewport().ScrollY)
	assert.Nil(t, h.tl.Hovered())

	h.tl.ScrollRowsBy(-10)
	assert.Zero(t, h.tl.Viewport().ScrollY)

	// Growing the view clamps the offset.
	h.tl.ScrollRowsBy(3)
	h.tl.Resize(400, 500)
	assert.Zero(t, h.tl.Viewport().ScrollY)
}

func TestTimeline_OpenHoveredWithoutHover(t *testing.T) {
	h := newHarness(t, testConfig())
	assert.False(t, h.tl.OpenHovered())
	assert.False(t, h.tl.HoverNext(1))
}

func TestTimeline_Painting(t *testing.T) {
	h := newHarness(t, testConfig())
	require.NoError(t, h.tl.SetRecords(context.Background(), scenarioRecords()))

	h.flush(time.Second)
	assert.Equal(t, 1, h.painted)
	assert.Contains(t, h.surface.Texts(), "Jan 2024")
	assert.Contains(t, h.surface.Texts(), "Feb 15")

	// Nothing changed, nothing painted.
	h.flush(time.Second)
	assert.Equal(t, 1, h.painted)
}

func TestTimeline_LoadingAndEmpty(t *testing.T) {
	h := newHarness(t, testConfig())

	h.tl.SetLoading(true, "Loading records...")
	loading, msg := h.tl.state.GetLoadingState()
	assert.True(t, loading)
	assert.Equal(t, "Loading records...", msg)
	assert.True(t, h.tl.Scene(FrameInfo{}).Loading)

	h.tl.SetLoading(false, "")
	h.surface.Reset()
	h.flush(time.Second)
	assert.Contains(t, h.surface.Texts(), canvas.EmptyMessage)
}
