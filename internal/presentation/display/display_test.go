package display

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/penwyp/go-pm-timeline/internal/testing/e2e"
	"github.com/penwyp/go-pm-timeline/internal/util"
)

func TestTerminalDisplay_AlternateScreen(t *testing.T) {
	var buf bytes.Buffer
	td := NewTerminalDisplay(&buf)

	td.EnterAlternateScreen()
	assert.True(t, strings.HasPrefix(buf.String(), "\033[?1049h"))
	assert.Contains(t, buf.String(), util.HideCursor)

	buf.Reset()
	td.EnterAlternateScreen()
	assert.Empty(t, buf.String(), "entering twice is a no-op")

	td.ExitAlternateScreen()
	assert.True(t, strings.HasSuffix(buf.String(), "\033[?1049l"))
	assert.Contains(t, buf.String(), util.ShowCursor)
}

func TestTerminalDisplay_DifferentialRender(t *testing.T) {
	var buf bytes.Buffer
	td := NewTerminalDisplay(&buf)

	td.Render(Frame{Lines: []string{"alpha", "beta", "gamma"}})
	first := buf.String()
	assert.Contains(t, first, util.ClearScreen)
	assert.Contains(t, first, util.MoveCursor(1, 1)+util.ClearLine+"alpha")
	assert.Contains(t, first, util.MoveCursor(3, 1)+util.ClearLine+"gamma")

	buf.Reset()
	td.Render(Frame{Lines: []string{"alpha", "BETA", "gamma"}})
	assert.Equal(t, util.MoveCursor(2, 1)+util.ClearLine+"BETA", buf.String())

	buf.Reset()
	td.Render(Frame{Lines: []string{"alpha", "BETA", "gamma"}})
	assert.Empty(t, buf.String(), "identical frames write nothing")

	buf.Reset()
	td.Render(Frame{Lines: []string{"alpha"}})
	assert.Equal(t, util.MoveCursor(2, 1)+util.ClearLine+util.MoveCursor(3, 1)+util.ClearLine, buf.String())
}

func TestTerminalDisplay_StatusAndHelp(t *testing.T) {
	var buf bytes.Buffer
	td := NewTerminalDisplay(&buf)

	td.Render(Frame{Lines: []string{"row"}, Status: "zoom 1.15x"})
	assert.Contains(t, buf.String(), util.MoveCursor(2, 1)+util.ClearLine+"  zoom 1.15x")

	buf.Reset()
	td.Render(Frame{Lines: []string{"row"}, ShowHelp: true})
	assert.Contains(t, buf.String(), util.ClearScreen)
	assert.Contains(t, buf.String(), "Keyboard Shortcuts:")
}

func TestTerminalDisplay_ScreenReplay(t *testing.T) {
	screen := e2e.NewScreen(6, 40)
	td := NewTerminalDisplay(screen)

	td.EnterAlternateScreen()
	assert.True(t, screen.Alternate())
	assert.False(t, screen.CursorVisible())

	td.Render(Frame{Lines: []string{"\x1b[1mJan 2024\x1b[0m", "████ Design"}, Status: "2 items"})
	td.Render(Frame{Lines: []string{"Jan 2024", "██ Build"}, Status: "1 items"})
	assert.Equal(t, "Jan 2024", screen.Line(0))
	assert.Equal(t, "██ Build", screen.Line(1))
	assert.Equal(t, "  1 items", screen.Line(2))

	td.Render(Frame{ShowHelp: true})
	assert.True(t, screen.Contains("Keyboard Shortcuts:"))
	assert.False(t, screen.Contains("Build"))

	td.ExitAlternateScreen()
	assert.False(t, screen.Alternate())
	assert.True(t, screen.CursorVisible())
}

func TestSizer(t *testing.T) {
	tests := []struct {
		name             string
		cols, rows       int
		err              error
		wantCols, wantRs int
	}{
		{name: "terminal_size", cols: 120, rows: 40, wantCols: 120, wantRs: 39},
		{name: "not_a_terminal", err: errors.New("not a tty"), wantCols: DefaultColumns, wantRs: DefaultRows - 1},
		{name: "tiny", cols: 10, rows: 1, wantCols: 10, wantRs: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSizer(8, 16)
			s.getSize = func() (int, int, error) { return tt.cols, tt.rows, tt.err }
			cols, rows := s.Size()
			assert.Equal(t, tt.wantCols, cols)
			assert.Equal(t, tt.wantRs, rows)

			w, h := s.Viewport()
			assert.Equal(t, float64(tt.wantCols*8), w)
			assert.Equal(t, float64(tt.wantRs*16), h)
		})
	}
}
