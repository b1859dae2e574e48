package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-pm-timeline/internal/util"
)

// Frame is one screenful for the terminal viewer.
type Frame struct {
	Lines    []string
	Status   string
	ShowHelp bool
}

type TerminalDisplay struct {
	out               io.Writer
	inAlternateScreen bool
	previousScreen    []string // Previous screen content for differential updates
	isFirstRender     bool
	lastHelp          bool
}

func NewTerminalDisplay(out io.Writer) *TerminalDisplay {
	return &TerminalDisplay{
		out:            out,
		previousScreen: make([]string, 0),
		isFirstRender:  true,
	}
}

// EnterAlternateScreen switches to alternate screen buffer
func (td *TerminalDisplay) EnterAlternateScreen() {
	if td.inAlternateScreen {
		return
	}
	var sb strings.Builder
	sb.WriteString("\033[?1049h")
	sb.WriteString(util.ClearScreen)
	sb.WriteString(util.MoveCursorHome)
	sb.WriteString(util.ClearScrollback)
	sb.WriteString(util.ResetScrollRegion)
	sb.WriteString(util.DisableScrollback)
	sb.WriteString(util.HideCursor)
	fmt.Fprint(td.out, sb.String())
	td.inAlternateScreen = true
	td.isFirstRender = true
}

// ExitAlternateScreen returns to normal screen buffer
func (td *TerminalDisplay) ExitAlternateScreen() {
	if !td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.ClearScreen+util.MoveCursorHome+util.EnableScrollback+util.ShowCursor+"\033[?1049l")
	td.inAlternateScreen = false
}

// ClearForTransition clears the screen and forgets the previous frame.
func (td *TerminalDisplay) ClearForTransition() {
	fmt.Fprint(td.out, util.ClearScreen+util.ClearScrollback+util.MoveCursorHome)
	td.previousScreen = make([]string, 0)
}

// Render draws f, rewriting only the lines that changed since the last
// frame.
func (td *TerminalDisplay) Render(f Frame) {
	lines := f.Lines
	if f.ShowHelp {
		lines = helpLines()
	}
	if f.Status != "" {
		lines = append(append([]string(nil), lines...), "  "+f.Status)
	}

	if td.isFirstRender || f.ShowHelp != td.lastHelp {
		td.ClearForTransition()
		td.isFirstRender = false
		td.lastHelp = f.ShowHelp
	}

	var sb strings.Builder
	for i, line := range lines {
		if i < len(td.previousScreen) && td.previousScreen[i] == line {
			continue
		}
		sb.WriteString(util.MoveCursor(i+1, 1))
		sb.WriteString(util.ClearLine)
		sb.WriteString(line)
	}
	for i := len(lines); i < len(td.previousScreen); i++ {
		sb.WriteString(util.MoveCursor(i+1, 1))
		sb.WriteString(util.ClearLine)
	}
	if sb.Len() > 0 {
		fmt.Fprint(td.out, sb.String())
	}
	td.previousScreen = append(td.previousScreen[:0], lines...)
}

func helpLines() []string {
	return []string{
		"Timeline Viewer - Help",
		strings.Repeat("═", 60),
		"",
		"Keyboard Shortcuts:",
		"",
		"  +/=        - Zoom in",
		"  -          - Zoom out",
		"  0          - Reset zoom",
		"  h/l ←/→    - Scroll left/right",
		"  J/K        - Scroll down/up",
		"  t          - Scroll to today",
		"  n/p ↓/↑    - Hover next/previous item",
		"  Enter      - Open hovered item",
		"  ?          - Toggle this help",
		"  q/Esc      - Quit",
		"",
		strings.Repeat("═", 60),
	}
}
