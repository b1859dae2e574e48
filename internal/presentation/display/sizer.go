package display

import (
	"os"

	"golang.org/x/term"

	"github.com/penwyp/go-pm-timeline/internal/util"
)

// Fallback terminal size when stdout is not a terminal.
const (
	DefaultColumns = 100
	DefaultRows    = 30
)

// Sizer reports the terminal size and converts it to pixel space for the
// cell surface.
type Sizer struct {
	CellW, CellH float64
	// ReservedRows are kept free for the status line.
	ReservedRows int
	getSize      func() (int, int, error)
}

// NewSizer creates a sizer reading stdout's terminal size.
func NewSizer(cellW, cellH float64) *Sizer {
	return &Sizer{
		CellW:        cellW,
		CellH:        cellH,
		ReservedRows: 1,
		getSize: func() (int, int, error) {
			return term.GetSize(int(os.Stdout.Fd()))
		},
	}
}

// Size returns the usable terminal size in cells.
func (s *Sizer) Size() (int, int) {
	cols, rows, err := s.getSize()
	if err != nil || cols <= 0 || rows <= 0 {
		util.LogDebugf("terminal size unavailable, using %dx%d", DefaultColumns, DefaultRows)
		cols, rows = DefaultColumns, DefaultRows
	}
	return cols, max(1, rows-s.ReservedRows)
}

// Viewport returns the usable size in pixels.
func (s *Sizer) Viewport() (float64, float64) {
	cols, rows := s.Size()
	return float64(cols) * s.CellW, float64(rows) * s.CellH
}

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
