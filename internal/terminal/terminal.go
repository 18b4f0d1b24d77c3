// Package terminal reads keyboard input in raw mode for the menu UI
package terminal

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/omochice/netbattle/internal/ansi"
	"github.com/omochice/netbattle/internal/surface"
)

// LineMaxLen bounds ReadLine input, including room for a terminator
const LineMaxLen = 50

const (
	keyInterrupt = 0x03
	keyBackspace = 0x08
	keyEscape    = 0x1b
	keyDelete    = 0x7f
)

// ErrInterrupt is returned when the user presses Ctrl-C. Raw mode disables
// the signal, so the key arrives as input
var ErrInterrupt = errors.New("interrupted")

// Terminal is the keyboard side of the UI. One goroutine pumps input bytes
// so reads can be abandoned when ctx is cancelled
type Terminal struct {
	mode    Mode
	surface *surface.Surface
	keys    chan byte

	mu  sync.Mutex
	err error
}

// New starts pumping bytes from in. Prompts and echo are painted on s
func New(in io.Reader, mode Mode, s *surface.Surface) *Terminal {
	t := &Terminal{
		mode:    mode,
		surface: s,
		keys:    make(chan byte, 64),
	}
	go t.pump(bufio.NewReader(in))
	return t
}

func (t *Terminal) pump(r *bufio.Reader) {
	defer close(t.keys)
	for {
		b, err := r.ReadByte()
		if err != nil {
			t.mu.Lock()
			t.err = err
			t.mu.Unlock()
			return
		}
		t.keys <- b
	}
}

func (t *Terminal) readByte(ctx context.Context) (byte, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case b, ok := <-t.keys:
		if !ok {
			t.mu.Lock()
			defer t.mu.Unlock()
			return 0, t.err
		}
		if b == keyInterrupt {
			return 0, ErrInterrupt
		}
		return b, nil
	}
}

// WithRaw runs fn with the terminal in raw mode and restores the previous
// mode on every return path
func (t *Terminal) WithRaw(fn func() error) (err error) {
	restore, err := t.mode.Enter()
	if err != nil {
		return err
	}
	defer func() {
		if rerr := restore(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	return fn()
}

// ReadLine shows prompt on the status line and reads one line of printable
// input. Arrow keys are ignored
func (t *Terminal) ReadLine(ctx context.Context, prompt string) (string, error) {
	t.paint(ansi.ShowCursor)
	defer t.paint(ansi.HideCursor)
	t.surface.Write(0, "%s", prompt)

	line := make([]byte, 0, LineMaxLen)
	err := t.WithRaw(func() error {
		for {
			b, err := t.readByte(ctx)
			if err != nil {
				return err
			}

			switch {
			case b == '\n' || b == '\r':
				return nil
			case b == keyEscape:
				// ESC [ A..D
				for i := 0; i < 2; i++ {
					if _, err := t.readByte(ctx); err != nil {
						return err
					}
				}
				continue
			case b == keyDelete || b == keyBackspace:
				if len(line) == 0 {
					continue
				}
				line = line[:len(line)-1]
			case 0x20 <= b && b < keyDelete:
				if len(line) >= LineMaxLen-1 {
					continue
				}
				line = append(line, b)
			default:
				continue
			}
			t.surface.Write(0, "%s%s", prompt, line)
		}
	})
	if err != nil {
		return "", err
	}
	return string(line), nil
}

// ReadSingleKey reads keys until a newline or sentinel arrives and returns
// the one seen. Carriage return is reported as '\n'
func (t *Terminal) ReadSingleKey(ctx context.Context, sentinel byte) (byte, error) {
	var key byte
	err := t.WithRaw(func() error {
		for {
			b, err := t.readByte(ctx)
			if err != nil {
				return err
			}
			if b == '\r' {
				b = '\n'
			}
			if b == '\n' || b == sentinel {
				key = b
				return nil
			}
		}
	})
	return key, err
}

func (t *Terminal) paint(seq string) {
	t.surface.Paint(func(w io.Writer) {
		io.WriteString(w, seq)
	})
}
