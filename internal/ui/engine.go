// Package ui drives the menu screens: button selection, the command line,
// and transitions between the start, main and battle screens
package ui

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/omochice/netbattle/internal/ansi"
	"github.com/omochice/netbattle/internal/session"
	"github.com/omochice/netbattle/internal/surface"
	"github.com/omochice/netbattle/internal/terminal"
	"github.com/omochice/netbattle/pkg/protocol"
)

// Input is the keyboard side of the terminal
type Input interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
	ReadSingleKey(ctx context.Context, sentinel byte) (byte, error)
}

// Sender is the sending half of a channel.Channel
type Sender interface {
	SendFrame(req protocol.RequestFrame) error
}

// keyNext moves the highlight to the next button
const keyNext = '\t'

// Engine owns the UI goroutine
type Engine struct {
	in       Input
	out      *surface.Surface
	send     Sender
	session  *session.Session
	buttons  [buttonCount]Button
	commands map[string]command
}

// New creates an Engine. Run must be called from a single goroutine
func New(in Input, out *surface.Surface, send Sender, sess *session.Session) *Engine {
	e := &Engine{
		in:      in,
		out:     out,
		send:    send,
		session: sess,
	}
	e.buttons = e.layout()
	e.commands = e.commandTable()
	return e
}

// Run shows the start screen and returns nil once the user quits. Any
// error is fatal to the client
func (e *Engine) Run(ctx context.Context) error {
	err := e.startScreen(ctx)
	if errors.Is(err, terminal.ErrInterrupt) {
		_, err = e.quit(ctx)
	}
	return err
}

// choose runs the selection loop over buttons [start, end). It returns the
// activated button id, or -1 when the session state changed or the command
// line asked to exit
func (e *Engine) choose(ctx context.Context, start, end int, changed <-chan struct{}) (int, Signal, error) {
	keyCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-changed:
			cancel()
		case <-keyCtx.Done():
		}
	}()

	sel := NewSelector(start, end)
	for {
		key, err := e.in.ReadSingleKey(keyCtx, keyNext)
		if err != nil {
			if ctx.Err() == nil && keyCtx.Err() != nil {
				return -1, Continue, nil
			}
			return -1, Continue, err
		}

		if id, ok := sel.Selected(); ok && key == '\n' {
			return id, Continue, nil
		}

		prev, hadPrev := sel.Selected()
		cur, boundary := sel.Next()
		if hadPrev {
			e.drawButton(prev, false)
		}
		if boundary {
			sig, err := e.commandLine(ctx)
			if err != nil || sig == Exit {
				return -1, sig, err
			}
		}
		e.drawButton(cur, true)
	}
}

func (e *Engine) drawButton(id int, selected bool) {
	b := e.buttons[id]
	e.out.Paint(func(w io.Writer) {
		b.Draw(w, selected)
	})
}

func (e *Engine) drawButtons(ids ...int) {
	e.out.Paint(func(w io.Writer) {
		for _, id := range ids {
			e.buttons[id].Draw(w, false)
		}
	})
}

// clearScreen blanks every row above the two status rows
func (e *Engine) clearScreen() {
	blank := strings.Repeat(" ", e.out.Width())
	e.out.Paint(func(w io.Writer) {
		for row := 1; row < e.out.BaseRow()-1; row++ {
			io.WriteString(w, ansi.MoveTo(1, row))
			io.WriteString(w, blank)
		}
	})
}

func (e *Engine) repaintStatus() {
	snap := e.session.Snapshot()
	e.out.Status(snap.Name, snap.State.String())
}
