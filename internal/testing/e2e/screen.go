// Package e2e replays terminal output into a virtual screen so tests can
// assert on what a user would see.
package e2e

import (
	"regexp"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"
)

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)

// StripANSI removes all CSI escape sequences from s.
func StripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}

// Screen is a virtual terminal. It understands the cursor, erase and mode
// sequences the viewer writes; colours are dropped. Writes and reads may
// come from different goroutines.
type Screen struct {
	mu         sync.Mutex
	rows, cols int
	cells      [][]rune
	x, y       int
	alternate  bool
	cursorOn   bool
}

// NewScreen creates a blank screen.
func NewScreen(rows, cols int) *Screen {
	s := &Screen{rows: rows, cols: cols, cursorOn: true}
	s.cells = make([][]rune, rows)
	for i := range s.cells {
		s.cells[i] = blankLine(cols)
	}
	return s
}

func blankLine(cols int) []rune {
	line := make([]rune, cols)
	for i := range line {
		line[i] = ' '
	}
	return line
}

// Write feeds terminal output to the screen. It never fails.
func (s *Screen) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed(string(p))
	return len(p), nil
}

func (s *Screen) feed(out string) {
	runes := []rune(out)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; {
		case r == '\x1b' && i+1 < len(runes) && runes[i+1] == '[':
			i = s.csi(runes, i+2)
		case r == '\r':
			s.x = 0
		case r == '\n':
			s.x = 0
			s.lineFeed()
		default:
			s.put(r)
		}
	}
}

// csi applies the sequence starting at runes[i] and returns the index of
// its final byte.
func (s *Screen) csi(runes []rune, i int) int {
	private := false
	if i < len(runes) && runes[i] == '?' {
		private = true
		i++
	}
	var params []int
	cur, has := 0, false
	for ; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r >= '0' && r <= '9':
			cur = cur*10 + int(r-'0')
			has = true
		case r == ';':
			params = append(params, cur)
			cur, has = 0, false
		default:
			if has {
				params = append(params, cur)
			}
			if private {
				s.mode(r, params)
			} else {
				s.command(r, params)
			}
			return i
		}
	}
	return i
}

func param(params []int, idx, def int) int {
	if idx < len(params) && params[idx] > 0 {
		return params[idx]
	}
	return def
}

func (s *Screen) mode(cmd rune, params []int) {
	on := cmd == 'h'
	switch param(params, 0, 0) {
	case 1049:
		s.alternate = on
	case 25:
		s.cursorOn = on
	}
}

func (s *Screen) command(cmd rune, params []int) {
	switch cmd {
	case 'H', 'f':
		s.y = min(s.rows-1, param(params, 0, 1)-1)
		s.x = min(s.cols-1, param(params, 1, 1)-1)
	case 'J':
		mode := 0
		if len(params) > 0 {
			mode = params[0]
		}
		s.eraseScreen(mode)
	case 'K':
		mode := 0
		if len(params) > 0 {
			mode = params[0]
		}
		s.eraseLine(mode)
	case 'A':
		s.y = max(0, s.y-param(params, 0, 1))
	case 'B':
		s.y = min(s.rows-1, s.y+param(params, 0, 1))
	case 'C':
		s.x = min(s.cols-1, s.x+param(params, 0, 1))
	case 'D':
		s.x = max(0, s.x-param(params, 0, 1))
	}
	// 'm' (colours) and 'r' (scroll region) do not change the text.
}

func (s *Screen) eraseScreen(mode int) {
	switch mode {
	case 0:
		s.eraseLine(0)
		for i := s.y + 1; i < s.rows; i++ {
			s.cells[i] = blankLine(s.cols)
		}
	case 1:
		for i := 0; i < s.y; i++ {
			s.cells[i] = blankLine(s.cols)
		}
		s.eraseLine(1)
	default:
		for i := range s.cells {
			s.cells[i] = blankLine(s.cols)
		}
	}
}

func (s *Screen) eraseLine(mode int) {
	line := s.cells[s.y]
	switch mode {
	case 0:
		for j := s.x; j < s.cols; j++ {
			line[j] = ' '
		}
	case 1:
		for j := 0; j <= s.x && j < s.cols; j++ {
			line[j] = ' '
		}
	default:
		s.cells[s.y] = blankLine(s.cols)
	}
}

// put writes r at the cursor. Wide runes take two cells; the second one
// holds a zero rune that Line skips.
func (s *Screen) put(r rune) {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		return
	}
	if s.x+w > s.cols {
		s.x = 0
		s.lineFeed()
	}
	s.cells[s.y][s.x] = r
	if w == 2 {
		s.cells[s.y][s.x+1] = 0
	}
	s.x += w
}

func (s *Screen) lineFeed() {
	if s.y < s.rows-1 {
		s.y++
		return
	}
	copy(s.cells, s.cells[1:])
	s.cells[s.rows-1] = blankLine(s.cols)
}

// Line returns row i without trailing blanks.
func (s *Screen) Line(i int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.line(i)
}

func (s *Screen) line(i int) string {
	if i < 0 || i >= s.rows {
		return ""
	}
	var sb strings.Builder
	for _, r := range s.cells[i] {
		if r != 0 {
			sb.WriteRune(r)
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

// Text returns every row joined by newlines.
func (s *Screen) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := make([]string, s.rows)
	for i := range lines {
		lines[i] = s.line(i)
	}
	return strings.Join(lines, "\n")
}

// Contains reports whether text appears on any row.
func (s *Screen) Contains(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < s.rows; i++ {
		if strings.Contains(s.line(i), text) {
			return true
		}
	}
	return false
}

// Alternate reports whether the alternate screen buffer is active.
func (s *Screen) Alternate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alternate
}

// CursorVisible reports whether the cursor is shown.
func (s *Screen) CursorVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursorOn
}
