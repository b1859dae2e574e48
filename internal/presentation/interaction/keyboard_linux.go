//go:build linux

package interaction

import "golang.org/x/sys/unix"

// enableRawMode sets the terminal to raw mode on Linux
func (kr *KeyboardReader) enableRawMode() error {
	return rawMode(kr, unix.TCGETS, unix.TCSETS)
}
