// Package dispatcher receives server frames in the background and turns each
// into a session transition and a status line notification
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/omochice/netbattle/internal/channel"
	"github.com/omochice/netbattle/internal/session"
	"github.com/omochice/netbattle/pkg/protocol"
)

// Receiver is the receiving half of a channel.Channel
type Receiver interface {
	ReceiveFrame() (protocol.ResponseFrame, error)
}

// Notifier is where notifications are painted
type Notifier interface {
	Server(msg string)
	Status(name, state string)
}

// Handler reacts to one received frame
type Handler func(frame protocol.ResponseFrame)

// Dispatcher maps each message kind to its handler
type Dispatcher struct {
	recv     Receiver
	session  *session.Session
	out      Notifier
	handlers map[protocol.Message]Handler
}

// New creates a Dispatcher with a handler for every defined message kind
func New(recv Receiver, sess *session.Session, out Notifier) *Dispatcher {
	d := &Dispatcher{
		recv:    recv,
		session: sess,
		out:     out,
	}
	d.handlers = d.table()
	return d
}

// Run receives and dispatches frames in arrival order until the channel is
// closed (nil) or fails (the wrapped error)
func (d *Dispatcher) Run(ctx context.Context) error {
	log.Printf("Message monitor started")
	for {
		frame, err := d.recv.ReceiveFrame()
		if err != nil {
			if errors.Is(err, channel.ErrClosed) || ctx.Err() != nil {
				log.Printf("Message monitor stopped")
				return nil
			}
			return fmt.Errorf("message monitor: %w", err)
		}

		log.Printf("Received %v", frame.Message)
		if !d.Dispatch(frame) {
			log.Printf("Ignoring unknown message kind %d", int32(frame.Message))
		}
	}
}

// Dispatch runs the handler for frame.Message. It reports false, doing
// nothing, when the kind has no handler
func (d *Dispatcher) Dispatch(frame protocol.ResponseFrame) bool {
	h, ok := d.handlers[frame.Message]
	if !ok {
		return false
	}
	h(frame)
	return true
}

// Handles reports whether msg has a handler
func (d *Dispatcher) Handles(msg protocol.Message) bool {
	_, ok := d.handlers[msg]
	return ok
}

func (d *Dispatcher) repaintStatus() {
	snap := d.session.Snapshot()
	d.out.Status(snap.Name, snap.State.String())
}
