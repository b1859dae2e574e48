package interaction

import (
	"errors"
	"os"
)

// ErrNoTerminal is returned when raw keyboard input is unavailable.
var ErrNoTerminal = errors.New("keyboard: raw mode not supported")

// KeyboardReader handles keyboard input in raw mode
type KeyboardReader struct {
	restore func() error
	input   chan KeyEvent
	stop    chan struct{}
}

// KeyEvent represents a keyboard event
type KeyEvent struct {
	Key  rune
	Type KeyType
}

// KeyType represents the type of key pressed
type KeyType int

const (
	KeyChar KeyType = iota
	KeyEscape
	KeyEnter
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
)

// Action is a viewer command bound to a key.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionZoomIn
	ActionZoomOut
	ActionZoomReset
	ActionScrollLeft
	ActionScrollRight
	ActionScrollUp
	ActionScrollDown
	ActionToday
	ActionNextItem
	ActionPrevItem
	ActionOpen
	ActionHelp
)

// NewKeyboardReader creates a new keyboard reader
func NewKeyboardReader() (*KeyboardReader, error) {
	kr := &KeyboardReader{
		input: make(chan KeyEvent, 10),
		stop:  make(chan struct{}),
	}

	// Set terminal to raw mode
	if err := kr.enableRawMode(); err != nil {
		return nil, err
	}

	// Start reading keyboard input
	go kr.readInput()

	return kr, nil
}

// readInput reads keyboard input in a goroutine
func (kr *KeyboardReader) readInput() {
	buf := make([]byte, 3)

	for {
		select {
		case <-kr.stop:
			return
		default:
			n, err := os.Stdin.Read(buf)
			if err != nil || n == 0 {
				continue
			}

			event := kr.parseInput(buf[:n])
			if event != nil {
				select {
				case kr.input <- *event:
				case <-kr.stop:
					return
				}
			}
		}
	}
}

// parseInput parses raw keyboard input
func (kr *KeyboardReader) parseInput(buf []byte) *KeyEvent {
	if len(buf) == 0 {
		return nil
	}

	switch buf[0] {
	case 3: // Ctrl+C
		return &KeyEvent{Key: 3, Type: KeyChar}
	case '\r', '\n':
		return &KeyEvent{Key: '\r', Type: KeyEnter}
	case 27: // ESC
		if len(buf) == 1 {
			return &KeyEvent{Key: 27, Type: KeyEscape}
		}
		if len(buf) >= 3 && buf[1] == '[' {
			switch buf[2] {
			case 'A':
				return &KeyEvent{Type: KeyUp}
			case 'B':
				return &KeyEvent{Type: KeyDown}
			case 'C':
				return &KeyEvent{Type: KeyRight}
			case 'D':
				return &KeyEvent{Type: KeyLeft}
			}
		}
		return nil
	}

	return &KeyEvent{Key: rune(buf[0]), Type: KeyChar}
}

// ActionFor maps a key event to a viewer action.
func ActionFor(ev KeyEvent) Action {
	switch ev.Type {
	case KeyEscape:
		return ActionQuit
	case KeyEnter:
		return ActionOpen
	case KeyLeft:
		return ActionScrollLeft
	case KeyRight:
		return ActionScrollRight
	case KeyUp:
		return ActionPrevItem
	case KeyDown:
		return ActionNextItem
	}

	switch ev.Key {
	case 3, 'q', 'Q':
		return ActionQuit
	case '+', '=':
		return ActionZoomIn
	case '-', '_':
		return ActionZoomOut
	case '0':
		return ActionZoomReset
	case 'h':
		return ActionScrollLeft
	case 'l':
		return ActionScrollRight
	case 'K':
		return ActionScrollUp
	case 'J':
		return ActionScrollDown
	case 't', 'T':
		return ActionToday
	case 'n', 'j':
		return ActionNextItem
	case 'p', 'k':
		return ActionPrevItem
	case '?':
		return ActionHelp
	}
	return ActionNone
}

// Events returns the keyboard event channel
func (kr *KeyboardReader) Events() <-chan KeyEvent {
	return kr.input
}

// Close stops the keyboard reader and restores terminal
func (kr *KeyboardReader) Close() error {
	close(kr.stop)
	if kr.restore == nil {
		return nil
	}
	return kr.restore()
}
