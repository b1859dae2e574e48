package timeline

import (
	"context"
	"fmt"
	"time"

	"github.com/penwyp/go-pm-timeline/internal/core/coords"
	"github.com/penwyp/go-pm-timeline/internal/core/layout"
	"github.com/penwyp/go-pm-timeline/internal/core/model"
	"github.com/penwyp/go-pm-timeline/internal/core/normalize"
	dates "github.com/penwyp/go-pm-timeline/internal/core/timeline"
	"github.com/penwyp/go-pm-timeline/internal/presentation/canvas"
	"github.com/penwyp/go-pm-timeline/internal/presentation/interaction"
	"github.com/penwyp/go-pm-timeline/internal/util"
)

// Option customizes a Timeline.
type Option func(*Timeline)

// WithClock replaces the wall clock used for animation and auto-scroll timing.
func WithClock(now func() time.Time) Option {
	return func(t *Timeline) { t.now = now }
}

// WithToday replaces the provider of the current calendar day.
func WithToday(today func() time.Time) Option {
	return func(t *Timeline) { t.today = today }
}

// WithLayouter replaces the background layout pool.
func WithLayouter(l Layouter) Option {
	return func(t *Timeline) { t.pool = l }
}

// WithHoverHandler is called on every hover transition, with nil when hover
// ends.
func WithHoverHandler(fn func(*model.LayoutEntry)) Option {
	return func(t *Timeline) { t.onHover = fn }
}

// WithDoubleClickHandler is called when an item is double-clicked or opened
// from the keyboard.
func WithDoubleClickHandler(fn func(model.LayoutEntry)) Option {
	return func(t *Timeline) { t.onDoubleClick = fn }
}

// WithPaintHandler is called after every painted frame.
func WithPaintHandler(fn func(FrameInfo)) Option {
	return func(t *Timeline) { t.onPaint = fn }
}

// WithDevicePixelRatio sets the backing store scale.
func WithDevicePixelRatio(dpr float64) Option {
	return func(t *Timeline) { t.dpr = dpr }
}

// Timeline is one timeline view: it turns raw records into a layout, keeps
// the geometry for the current zoom and viewport, reacts to pointer and
// keyboard input and paints through its render loop.
//
// A Timeline is not safe for concurrent use; drive it from one goroutine.
type Timeline struct {
	cfg      Config
	surface  canvas.Surface
	renderer *canvas.Renderer
	loop     *RenderLoop
	state    *StateManager
	pool     Layouter
	zoom     *interaction.Zoom
	pointer  *interaction.Pointer
	auto     *interaction.AutoScroll
	sorter   *interaction.EntrySorter

	now   func() time.Time
	today func() time.Time
	dpr   float64

	onHover       func(*model.LayoutEntry)
	onDoubleClick func(model.LayoutEntry)
	onPaint       func(FrameInfo)

	entries   []model.LayoutEntry
	rowCount  int
	dateRange dates.DateRange
	space     coords.Space
	items     []coords.Item
	nav       []string
	view      interaction.Viewport
	loading   bool
	tooltip   *canvas.Tooltip
	pointerX  float64
	pointerY  float64

	autoAt    time.Time
	autoArmed bool
}

// New creates a view drawing onto surface with frames from sched. Invalid
// configuration fails here rather than at draw time.
func New(cfg Config, surface canvas.Surface, sched FrameScheduler, opts ...Option) (*Timeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if surface == nil || sched == nil {
		return nil, fmt.Errorf("%w: surface and frame scheduler are required", ErrInvalidConfig)
	}

	t := &Timeline{
		cfg:      cfg,
		surface:  surface,
		renderer: canvas.NewRenderer(),
		state:    NewStateManager(),
		zoom:     interaction.NewZoom(cfg.MinZoomLevel, cfg.MaxZoomLevel, cfg.ZoomStep),
		pointer:  interaction.NewPointer(),
		auto:     interaction.NewAutoScroll(cfg.EnableAutoScroll),
		sorter:   interaction.NewEntrySorter(),
		now:      time.Now,
		dpr:      1,
		loading:  cfg.Loading,
		view: interaction.Viewport{
			HeaderHeight: cfg.HeaderHeight,
			Padding:      cfg.HorizontalPadding,
		},
	}
	t.sorter.SetField(interaction.SortByStart)

	for _, opt := range opts {
		opt(t)
	}
	if t.today == nil {
		tp, err := util.NewTimeProvider(cfg.Timezone, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		t.today = tp.Today
	}
	if t.pool == nil {
		t.pool = layout.NewPool(cfg.Workers, cfg.LayoutTimeout)
	}
	t.loop = NewRenderLoop(sched, t.paint, cfg.AnimationDuration, cfg.ZoomSettle)
	t.state.SetLoadingState(t.loading, "")
	t.recompute()
	return t, nil
}

// SetRecords replaces the data set: records are normalized, laid out and
// mapped into the current space, then the entrance animation starts. Invalid
// records are dropped, never reported as errors. Only a cancelled ctx fails.
func (t *Timeline) SetRecords(ctx context.Context, raws []model.RawRecord) error {
	today := t.today()
	res := normalize.All(raws, today)

	entries, err := t.layout(ctx, res.Entries)
	if err != nil {
		return err
	}

	t.entries = entries
	t.rowCount = layout.RowCount(entries)
	t.dateRange = dates.ComputeRange(res.Entries, today)
	t.state.SetLayout(entries, res.Dropped, t.rowCount, t.now())
	t.rebuildNav()
	t.recompute()
	t.dropHover()

	util.LogDebugf("timeline: %d entries in %d rows, %d dropped", len(entries), t.rowCount, len(res.Dropped))

	now := t.now()
	t.loop.Animate(now)
	if t.auto.Claim(len(t.items)) {
		t.autoAt = now.Add(t.cfg.AutoScrollDelay)
		t.autoArmed = true
		t.loop.HoldUntil(t.autoAt)
	}
	return nil
}

func (t *Timeline) layout(ctx context.Context, entries []model.Entry) ([]model.LayoutEntry, error) {
	if len(entries) <= t.cfg.WorkerThreshold {
		return layout.Assign(entries), nil
	}
	out, err := t.pool.Layout(ctx, entries)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	util.LogWarnf("layout pool failed, computing inline: %v", err)
	return layout.Assign(entries), nil
}

func (t *Timeline) rebuildNav() {
	sorted := make([]model.LayoutEntry, len(t.entries))
	copy(sorted, t.entries)
	t.sorter.Sort(sorted)
	t.nav = make([]string, len(sorted))
	for i, e := range sorted {
		t.nav[i] = e.ID
	}
}

// recompute derives the space and item geometry from the current data, zoom
// and viewport.
func (t *Timeline) recompute() {
	t.space = coords.NewSpace(t.dateRange, coords.Scale{
		PixelsPerDay:      t.cfg.PixelsPerDay,
		ZoomLevel:         t.zoom.Level(),
		ViewportWidth:     t.view.Width,
		HorizontalPadding: t.cfg.HorizontalPadding,
	})
	t.items = t.space.Geometry(t.entries, t.cfg.Rows())
	t.view.Padding = t.space.Padding
	t.view.ContentWidth = t.space.TotalWidth
	t.view.ContentHeight = t.cfg.Rows().ContentHeight(t.rowCount)
	t.view.ScrollX = t.view.ClampScroll(t.view.ScrollX)
	t.view.ScrollY = t.view.ClampScrollY(t.view.ScrollY)
}

// SetLoading toggles the skeleton placeholder.
func (t *Timeline) SetLoading(loading bool, message string) {
	t.loading = loading
	t.state.SetLoadingState(loading, message)
	t.loop.Invalidate()
}

// Resize sets the viewport size in CSS pixels.
func (t *Timeline) Resize(width, height float64) {
	if width == t.view.Width && height == t.view.Height {
		return
	}
	t.view.Width = max(0, width)
	t.view.Height = max(0, height)
	t.recompute()
	t.dropHover()
	t.loop.Invalidate()
}

// ZoomIn zooms in one step around the viewport centre.
func (t *Timeline) ZoomIn() bool { return t.applyZoom(t.zoom.In) }

// ZoomOut zooms out one step around the viewport centre.
func (t *Timeline) ZoomOut() bool { return t.applyZoom(t.zoom.Out) }

// SetZoom jumps to a zoom level clamped to the configured bounds. Unlike the
// stepping calls it skips the settle window, so the next frame is drawn at
// the detail tier of the new level.
func (t *Timeline) SetZoom(level float64) bool {
	if !t.zoom.Set(level) {
		return false
	}
	t.recompute()
	t.dropHover()
	t.loop.Invalidate()
	return true
}

// ResetZoom returns to zoom level 1.
func (t *Timeline) ResetZoom() bool { return t.applyZoom(t.zoom.Reset) }

func (t *Timeline) applyZoom(step func() bool) bool {
	before := t.view
	oldWidth := t.space.ContentWidth
	if !step() {
		return false
	}
	t.recompute()
	t.view.ScrollX = interaction.ScrollForZoom(before, before.Width/2, oldWidth, t.space.ContentWidth)
	t.dropHover()
	t.loop.Zoom(t.now())
	return true
}

// ScrollTo moves the horizontal scroll offset, clamped to the valid range.
// Any scroll ends hover.
func (t *Timeline) ScrollTo(x float64) {
	t.dropHover()
	next := t.view.ClampScroll(x)
	if next == t.view.ScrollX {
		return
	}
	t.view.ScrollX = next
	t.loop.Invalidate()
}

// ScrollBy scrolls by dx pixels.
func (t *Timeline) ScrollBy(dx float64) {
	t.ScrollTo(t.view.ScrollX + dx)
}

// ScrollYTo moves the vertical scroll offset, clamped so the last row can
// reach the bottom of the view. Any scroll ends hover.
func (t *Timeline) ScrollYTo(y float64) {
	t.dropHover()
	next := t.view.ClampScrollY(y)
	if next == t.view.ScrollY {
		return
	}
	t.view.ScrollY = next
	t.loop.Invalidate()
}

// ScrollRowsBy scrolls vertically by n rows.
func (t *Timeline) ScrollRowsBy(n int) {
	t.ScrollYTo(t.view.ScrollY + float64(n)*t.cfg.RowHeight)
}

// ScrollToToday centres the current-date marker. It reports false when today
// is outside the timeline.
func (t *Timeline) ScrollToToday() bool {
	x, ok := interaction.TodayScroll(t.view, t.space, t.today())
	if !ok {
		return false
	}
	t.ScrollTo(x)
	return true
}

// PointerMove handles a pointer move at client (x, y).
func (t *Timeline) PointerMove(x, y float64) {
	t.pointerX, t.pointerY = x, y
	change, delta := t.pointer.Move(t.view, t.items, x, y)
	if delta != 0 {
		t.ScrollBy(delta)
	}
	t.applyHover(change)
}

// PointerDown starts a drag-to-scroll over empty space.
func (t *Timeline) PointerDown(button interaction.Button, x, y float64) bool {
	t.pointerX, t.pointerY = x, y
	return t.pointer.Down(t.view, t.items, button, x, y)
}

// PointerUp ends a drag.
func (t *Timeline) PointerUp() {
	t.pointer.Up()
}

// PointerLeave ends hover and any drag.
func (t *Timeline) PointerLeave() {
	t.applyHover(t.pointer.Leave())
}

// DoubleClick reports the item at client (x, y) to the double-click handler.
func (t *Timeline) DoubleClick(x, y float64) bool {
	if !t.view.InBody(x, y) {
		return false
	}
	cx, cy := t.view.ToContent(x, y)
	hit := interaction.HitTest(t.items, cx, cy)
	if hit == nil {
		return false
	}
	if t.onDoubleClick != nil {
		t.onDoubleClick(hit.Entry)
	}
	return true
}

// HoverNext moves hover to the item after the hovered one in start order,
// scrolling it into view. dir < 0 moves backwards.
func (t *Timeline) HoverNext(dir int) bool {
	if len(t.nav) == 0 {
		return false
	}
	idx := -1
	if h := t.pointer.Hovered(); h != nil {
		for i, id := range t.nav {
			if id == h.Entry.ID {
				idx = i
				break
			}
		}
	}
	switch {
	case idx < 0 && dir < 0:
		idx = len(t.nav) - 1
	case idx < 0:
		idx = 0
	case dir < 0:
		idx = (idx - 1 + len(t.nav)) % len(t.nav)
	default:
		idx = (idx + 1) % len(t.nav)
	}

	it := t.item(t.nav[idx])
	if it == nil {
		return false
	}
	cx, cy := it.Center()
	if x, _ := t.view.ToClient(cx, cy); x < 0 || x > t.view.Width {
		t.ScrollTo(t.view.CenterOn(cx))
	}
	rowTop := float64(it.Entry.Row) * t.cfg.RowHeight
	if y := t.view.RevealY(rowTop, rowTop+t.cfg.RowHeight); y != t.view.ScrollY {
		t.ScrollYTo(y)
	}
	x, y := t.view.ToClient(cx, cy)
	t.PointerMove(x, y)
	return t.pointer.Hovered() != nil
}

// OpenHovered sends the hovered item to the double-click handler.
func (t *Timeline) OpenHovered() bool {
	h := t.pointer.Hovered()
	if h == nil {
		return false
	}
	if t.onDoubleClick != nil {
		t.onDoubleClick(h.Entry)
	}
	return true
}

func (t *Timeline) item(id string) *coords.Item {
	for i := range t.items {
		if t.items[i].Entry.ID == id {
			return &t.items[i]
		}
	}
	return nil
}

func (t *Timeline) dropHover() {
	t.applyHover(t.pointer.Scroll())
}

func (t *Timeline) applyHover(change interaction.HoverChange) {
	if !change.Changed {
		return
	}
	if change.Item == nil {
		t.tooltip = nil
		if t.onHover != nil {
			t.onHover(nil)
		}
	} else {
		t.tooltip = interaction.BuildTooltip(t.surface, change.Item.Entry.Entry, t.pointerX, t.pointerY, t.view.Width, t.view.Height)
		if t.onHover != nil {
			e := change.Item.Entry
			t.onHover(&e)
		}
	}
	t.loop.Invalidate()
}

func (t *Timeline) paint(info FrameInfo) {
	if t.autoArmed && !info.Now.Before(t.autoAt) {
		t.autoArmed = false
		if x, ok := interaction.TodayScroll(t.view, t.space, t.today()); ok {
			t.view.ScrollX = x
			t.pointer.Scroll()
			t.tooltip = nil
		}
	}
	t.renderer.Draw(t.surface, t.Scene(info))
	if t.onPaint != nil {
		t.onPaint(info)
	}
}

// Scene returns what the next frame with info would draw.
func (t *Timeline) Scene(info FrameInfo) canvas.Scene {
	hoverID, hoverRow := "", -1
	if h := t.pointer.Hovered(); h != nil {
		hoverID, hoverRow = h.Entry.ID, h.Entry.Row
	}
	return canvas.Scene{
		Space:        t.space,
		Items:        t.items,
		Rows:         t.cfg.Rows(),
		RowCount:     t.rowCount,
		HeaderHeight: t.cfg.HeaderHeight,
		ViewWidth:    t.view.Width,
		ViewHeight:   t.view.Height,
		ScrollX:      t.view.ScrollX,
		ScrollY:      t.view.ScrollY,
		DPR:          t.dpr,
		Zoom:         t.zoom.Level(),
		Zooming:      info.Zooming,
		Progress:     info.Progress,
		HoverID:      hoverID,
		HoverRow:     hoverRow,
		Today:        t.today(),
		ShowToday:    t.cfg.EnableCurrentDate,
		ShowGrid:     t.cfg.EnableGrid,
		Loading:      t.loading,
		Tooltip:      t.tooltip,
	}
}

// Entries returns the current layout.
func (t *Timeline) Entries() []model.LayoutEntry {
	return t.state.Entries()
}

// Snapshot returns the current data and loading state.
func (t *Timeline) Snapshot() Snapshot {
	return t.state.Snapshot()
}

// Items returns the geometry of every item.
func (t *Timeline) Items() []coords.Item {
	return t.items
}

// Space returns the current coordinate space.
func (t *Timeline) Space() coords.Space {
	return t.space
}

// Viewport returns the current viewport.
func (t *Timeline) Viewport() interaction.Viewport {
	return t.view
}

// ZoomLevel returns the current zoom level.
func (t *Timeline) ZoomLevel() float64 {
	return t.zoom.Level()
}

// Hovered returns the hovered entry, or nil.
func (t *Timeline) Hovered() *model.LayoutEntry {
	h := t.pointer.Hovered()
	if h == nil {
		return nil
	}
	e := h.Entry
	return &e
}

// Tooltip returns the visible tooltip, or nil.
func (t *Timeline) Tooltip() *canvas.Tooltip {
	return t.tooltip
}

// LoopState returns the render loop's mode.
func (t *Timeline) LoopState() LoopState {
	return t.loop.State()
}

// Close cancels the pending frame and stops the layout workers.
func (t *Timeline) Close() error {
	t.loop.Stop()
	if err := t.pool.Close(); err != nil {
		return fmt.Errorf("failed to close layout pool: %w", err)
	}
	return nil
}
