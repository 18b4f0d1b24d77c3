package terminal

import (
	"fmt"

	"golang.org/x/term"
)

// Mode switches the controlling terminal into raw input mode
type Mode interface {
	// Enter switches to raw mode and returns the function that restores the
	// previous settings
	Enter() (restore func() error, err error)
}

// RawMode toggles raw mode on a terminal file descriptor
type RawMode struct {
	fd int
}

// NewRawMode returns a Mode for fd, usually os.Stdin.Fd()
func NewRawMode(fd int) *RawMode {
	return &RawMode{fd: fd}
}

// Enter implements Mode
func (m *RawMode) Enter() (func() error, error) {
	old, err := term.MakeRaw(m.fd)
	if err != nil {
		return nil, fmt.Errorf("failed to set terminal attributes: %w", err)
	}
	return func() error {
		if err := term.Restore(m.fd, old); err != nil {
			return fmt.Errorf("failed to restore terminal attributes: %w", err)
		}
		return nil
	}, nil
}

// NopMode is used when input does not come from a terminal
type NopMode struct{}

// Enter implements Mode
func (NopMode) Enter() (func() error, error) {
	return func() error { return nil }, nil
}

// Default terminal size when the real one cannot be probed
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// Size returns the width and height of the terminal on fd
func Size(fd int) (width, height int) {
	w, h, err := term.GetSize(fd)
	if err != nil || w <= 0 || h <= 0 {
		return DefaultWidth, DefaultHeight
	}
	return w, h
}

// IsTerminal reports whether fd is a terminal
func IsTerminal(fd int) bool {
	return term.IsTerminal(fd)
}
