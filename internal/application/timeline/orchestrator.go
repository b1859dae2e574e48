package timeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/penwyp/go-pm-timeline/internal/core/model"
	"github.com/penwyp/go-pm-timeline/internal/presentation/canvas"
	"github.com/penwyp/go-pm-timeline/internal/presentation/display"
	"github.com/penwyp/go-pm-timeline/internal/presentation/interaction"
	"github.com/penwyp/go-pm-timeline/internal/util"
)

// Terminal cell size in timeline pixels.
const (
	DefaultCellWidth  = 8
	DefaultCellHeight = 16
)

// sizePollInterval is how often the terminal size is checked.
const sizePollInterval = 250 * time.Millisecond

// OrchestratorDeps are the collaborators of the terminal viewer. Keyboard
// and Watcher may be nil.
type OrchestratorDeps struct {
	Source   RecordSource
	Display  DisplayController
	Keyboard InputHandler
	Watcher  FileMonitor
	Sizer    TerminalSizer
}

// Orchestrator runs the interactive terminal viewer: it owns the event loop
// that feeds keyboard, file and resize events into a Timeline drawn on a
// cell surface.
type Orchestrator struct {
	config   Config
	deps     OrchestratorDeps
	surface  *canvas.CellSurface
	frames   *FrameTicker
	timeline *Timeline

	cellW, cellH float64
	cols, rows   int

	reload   *Debouncer
	resize   *Debouncer
	reloadCh chan struct{}
	resizeCh chan struct{}

	showHelp bool
	status   string
}

// NewOrchestrator wires a viewer. The timeline is created immediately so
// configuration errors surface before the terminal is touched.
func NewOrchestrator(config Config, deps OrchestratorDeps, opts ...Option) (*Orchestrator, error) {
	if deps.Source == nil || deps.Display == nil || deps.Sizer == nil {
		return nil, fmt.Errorf("%w: viewer needs a record source, a display and a sizer", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		config:   config,
		deps:     deps,
		cellW:    DefaultCellWidth,
		cellH:    DefaultCellHeight,
		frames:   NewFrameTicker(config.FrameInterval),
		reload:   NewDebouncer(config.ReloadDebounce),
		resize:   NewDebouncer(config.ResizeDebounce),
		reloadCh: make(chan struct{}, 1),
		resizeCh: make(chan struct{}, 1),
	}
	o.cols, o.rows = deps.Sizer.Size()
	o.surface = canvas.NewCellSurface(o.cols, o.rows, o.cellW, o.cellH)

	opts = append([]Option{
		WithPaintHandler(o.present),
		WithDoubleClickHandler(o.open),
	}, opts...)
	tl, err := New(config, o.surface, o.frames, opts...)
	if err != nil {
		o.frames.Stop()
		return nil, err
	}
	o.timeline = tl
	o.timeline.Resize(float64(o.cols)*o.cellW, float64(o.rows)*o.cellH)
	return o, nil
}

// Timeline returns the view driven by the orchestrator.
func (o *Orchestrator) Timeline() *Timeline {
	return o.timeline
}

// Run loads the records and processes events until ctx is done or the user
// quits.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.deps.Display.EnterAlternateScreen()
	defer o.deps.Display.ExitAlternateScreen()

	if err := o.load(ctx); err != nil {
		return err
	}

	var keyEvents <-chan interaction.KeyEvent
	if o.deps.Keyboard != nil {
		keyEvents = o.deps.Keyboard.Events()
	}
	var fileEvents <-chan FileEvent
	if o.deps.Watcher != nil {
		fileEvents = o.deps.Watcher.Events()
	}

	sizeTicker := time.NewTicker(sizePollInterval)
	defer sizeTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case now := <-o.frames.C():
			o.frames.Flush(now)

		case event := <-keyEvents:
			if o.handleKeyboard(event) {
				return nil
			}

		case event := <-fileEvents:
			util.LogDebugf("Records changed: %s (%s)", event.Path, event.Operation)
			o.deps.Source.Invalidate(event.Path)
			o.reload.Trigger(func() { notify(o.reloadCh) })

		case <-o.reloadCh:
			if err := o.load(ctx); err != nil {
				util.LogWarnf("Reload failed, keeping previous layout: %v", err)
				o.status = "reload failed: " + err.Error()
				o.timeline.loop.Invalidate()
			}

		case <-sizeTicker.C:
			if cols, rows := o.deps.Sizer.Size(); cols != o.cols || rows != o.rows {
				o.resize.Trigger(func() { notify(o.resizeCh) })
			}

		case <-o.resizeCh:
			o.applySize()
		}
	}
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (o *Orchestrator) load(ctx context.Context) error {
	o.timeline.SetLoading(true, "Loading records...")
	records, err := o.deps.Source.Load()
	o.timeline.SetLoading(false, "")
	if err != nil {
		return err
	}
	o.status = ""
	return o.timeline.SetRecords(ctx, records)
}

func (o *Orchestrator) applySize() {
	o.cols, o.rows = o.deps.Sizer.Size()
	o.deps.Display.ClearForTransition()
	o.timeline.Resize(float64(o.cols)*o.cellW, float64(o.rows)*o.cellH)
}

// handleKeyboard applies a key press and reports whether to quit.
func (o *Orchestrator) handleKeyboard(event interaction.KeyEvent) bool {
	action := interaction.ActionFor(event)
	if o.showHelp {
		// Any key closes help; Esc only closes it.
		o.showHelp = false
		o.timeline.loop.Invalidate()
		return action == interaction.ActionQuit && event.Type != interaction.KeyEscape
	}

	step := o.timeline.Viewport().Width / 4
	switch action {
	case interaction.ActionQuit:
		return true
	case interaction.ActionZoomIn:
		o.timeline.ZoomIn()
	case interaction.ActionZoomOut:
		o.timeline.ZoomOut()
	case interaction.ActionZoomReset:
		o.timeline.ResetZoom()
	case interaction.ActionScrollLeft:
		o.timeline.ScrollBy(-step)
	case interaction.ActionScrollRight:
		o.timeline.ScrollBy(step)
	case interaction.ActionScrollUp:
		o.timeline.ScrollRowsBy(-1)
	case interaction.ActionScrollDown:
		o.timeline.ScrollRowsBy(1)
	case interaction.ActionToday:
		if !o.timeline.ScrollToToday() {
			o.status = "today is outside the timeline"
		}
	case interaction.ActionNextItem:
		o.timeline.HoverNext(1)
	case interaction.ActionPrevItem:
		o.timeline.HoverNext(-1)
	case interaction.ActionOpen:
		o.timeline.OpenHovered()
	case interaction.ActionHelp:
		o.showHelp = true
	default:
		return false
	}
	o.timeline.loop.Invalidate()
	return false
}

func (o *Orchestrator) open(e model.LayoutEntry) {
	key := e.IssueKey
	if key == "" {
		key = e.ID
	}
	o.status = fmt.Sprintf("opened %s: %s", key, e.Name)
	util.LogInfof("Opened item %s", key)
}

// present writes the painted cell surface to the terminal.
func (o *Orchestrator) present(FrameInfo) {
	o.deps.Display.Render(display.Frame{
		Lines:    o.surface.Render(),
		Status:   o.statusLine(),
		ShowHelp: o.showHelp,
	})
}

func (o *Orchestrator) statusLine() string {
	snap := o.timeline.Snapshot()
	if snap.Loading {
		return snap.LoadingMessage
	}

	parts := []string{
		fmt.Sprintf("zoom %.2fx", o.timeline.ZoomLevel()),
		fmt.Sprintf("%d items in %d rows", len(snap.Entries), snap.RowCount),
	}
	if n := len(snap.Dropped); n > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", n))
	}
	if h := o.timeline.Hovered(); h != nil {
		parts = append(parts, util.TruncateToWidth(h.Name, 40))
	}
	if o.status != "" {
		parts = append(parts, o.status)
	}
	parts = append(parts, "? help")
	return strings.Join(parts, " │ ")
}

// Close releases the timeline, the frame ticker and the input sources.
func (o *Orchestrator) Close() error {
	o.reload.Stop()
	o.resize.Stop()
	o.frames.Stop()

	var firstErr error
	if err := o.timeline.Close(); err != nil {
		firstErr = err
	}
	if o.deps.Keyboard != nil {
		if err := o.deps.Keyboard.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to restore terminal: %w", err)
		}
	}
	if o.deps.Watcher != nil {
		if err := o.deps.Watcher.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close file watcher: %w", err)
		}
	}
	return firstErr
}
