package util

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Terminal control sequences
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"

	ClearScreen       = "\033[2J"     // Clear entire screen
	ClearLine         = "\033[2K"     // Clear entire line
	ClearScrollback   = "\033[3J"     // Clear scrollback buffer
	ResetScrollRegion = "\033[r"      // Reset scroll region
	DisableScrollback = "\033[?1007h" // Disable scrollback
	EnableScrollback  = "\033[?1007l" // Enable scrollback
	MoveCursorHome    = "\033[H"      // Move cursor to home position
	HideCursor        = "\033[?25l"   // Hide cursor
	ShowCursor        = "\033[?25h"   // Show cursor
	EnterAltScreen    = "\033[?1049h"
	ExitAltScreen     = "\033[?1049l"
)

// Ellipsis is appended to truncated labels.
const Ellipsis = "…"

// GetDisplayWidth calculates the actual display width of a string, accounting for wide runes
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// TruncateToWidth shortens text to at most width display cells, ending with an
// ellipsis when anything was cut. Returns "" when not even the ellipsis fits.
func TruncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	if width < runewidth.StringWidth(Ellipsis) {
		return ""
	}
	return runewidth.Truncate(text, width, Ellipsis)
}

// PadString pads a string to a specific display width
func PadString(s string, width int, leftAlign bool) string {
	actualWidth := runewidth.StringWidth(s)
	if actualWidth >= width {
		return s
	}
	padding := strings.Repeat(" ", width-actualWidth)
	if leftAlign {
		return s + padding
	}
	return padding + s
}

// MoveCursor returns ANSI sequence to move cursor to specific position
func MoveCursor(row, col int) string {
	return fmt.Sprintf("\033[%d;%dH", row, col)
}

// ANSIForeground returns the 24-bit foreground escape for r,g,b in 0-255.
func ANSIForeground(r, g, b uint8) string {
	return fmt.Sprintf("\033[38;2;%d;%d;%dm", r, g, b)
}

// ANSIBackground returns the 24-bit background escape for r,g,b in 0-255.
func ANSIBackground(r, g, b uint8) string {
	return fmt.Sprintf("\033[48;2;%d;%d;%dm", r, g, b)
}
