package timeline

import (
	"context"

	"github.com/penwyp/go-pm-timeline/internal/core/model"
	"github.com/penwyp/go-pm-timeline/internal/presentation/display"
	"github.com/penwyp/go-pm-timeline/internal/presentation/interaction"
)

// Layouter assigns rows off the caller's goroutine. *layout.Pool satisfies it.
type Layouter interface {
	Layout(ctx context.Context, entries []model.Entry) ([]model.LayoutEntry, error)
	Close() error
}

// RecordSource supplies raw records to the viewer.
type RecordSource interface {
	// Load returns the current records
	Load() ([]model.RawRecord, error)
	// Invalidate forgets cached data for a changed path
	Invalidate(path string)
}

// DisplayController handles terminal display operations
type DisplayController interface {
	// EnterAlternateScreen switches to alternate terminal screen
	EnterAlternateScreen()
	// ExitAlternateScreen returns to normal terminal screen
	ExitAlternateScreen()
	// ClearForTransition forces the next frame to repaint everything
	ClearForTransition()
	// Render writes a frame
	Render(f display.Frame)
}

// InputHandler processes keyboard and other input events
type InputHandler interface {
	// Events returns a channel of keyboard events
	Events() <-chan interaction.KeyEvent
	// Close cleans up input handler resources
	Close() error
}

// FileMonitor watches for file changes
type FileMonitor interface {
	// Events returns a channel of file change events
	Events() <-chan FileEvent
	// Close stops monitoring and cleans up resources
	Close() error
}

// TerminalSizer reports the usable terminal size in cells.
type TerminalSizer interface {
	Size() (cols, rows int)
}
