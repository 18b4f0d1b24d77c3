// Package channel frames fixed-size protocol messages over a stream
// connection to the game server
package channel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/gobwas/ws"
	"github.com/omochice/netbattle/pkg/protocol"
)

var (
	// ErrBroken wraps every read or write failure on the connection.
	// The channel is unusable afterwards
	ErrBroken = errors.New("broken connection")

	// ErrClosed is returned once Close has been called
	ErrClosed = errors.New("channel closed")
)

// Supported values for the network argument of Dial
const (
	NetworkTCP       = "tcp"
	NetworkWebSocket = "ws"
)

// Channel sends request frames and receives response frames. Sends and
// receives may run concurrently with each other, but each direction is
// serialized so at most one partial frame is in flight per direction
type Channel struct {
	conn   Connection
	sendMu sync.Mutex
	recvMu sync.Mutex
	closed atomic.Bool
	once   sync.Once
}

// New wraps an established connection
func New(conn Connection) *Channel {
	return &Channel{conn: conn}
}

// Dial connects to the server. network is NetworkTCP with a host:port
// address or NetworkWebSocket with a ws:// URL
func Dial(ctx context.Context, network, address string) (*Channel, error) {
	switch network {
	case NetworkTCP:
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", address)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to server %s: %w", address, err)
		}
		return New(conn), nil
	case NetworkWebSocket:
		conn, br, _, err := ws.Dial(ctx, address)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to server %s: %w", address, err)
		}
		return New(NewWebSocketConnection(conn, br)), nil
	default:
		return nil, fmt.Errorf("unsupported network %q", network)
	}
}

// SendFrame writes the whole request frame, resuming after short writes
func (c *Channel) SendFrame(req protocol.RequestFrame) error {
	if c.closed.Load() {
		return ErrClosed
	}

	data, err := req.Encode()
	if err != nil {
		return err
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if err := c.writeFull(data); err != nil {
		if c.closed.Load() {
			return ErrClosed
		}
		return fmt.Errorf("failed to send %v: %w: %w", req.Command, ErrBroken, err)
	}
	return nil
}

// ReceiveFrame blocks until a whole response frame has been read
func (c *Channel) ReceiveFrame() (protocol.ResponseFrame, error) {
	var resp protocol.ResponseFrame
	if c.closed.Load() {
		return resp, ErrClosed
	}

	c.recvMu.Lock()
	defer c.recvMu.Unlock()

	buf := make([]byte, protocol.ResponseSize)
	if err := c.readFull(buf); err != nil {
		if c.closed.Load() {
			return resp, ErrClosed
		}
		return resp, fmt.Errorf("failed to receive frame: %w: %w", ErrBroken, err)
	}

	if err := resp.Decode(buf); err != nil {
		return resp, err
	}
	return resp, nil
}

// Close closes the underlying connection. It is safe to call more than once
func (c *Channel) Close() error {
	var err error
	c.once.Do(func() {
		c.closed.Store(true)
		err = c.conn.Close()
	})
	return err
}

// RemoteAddr returns the server address
func (c *Channel) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *Channel) writeFull(data []byte) error {
	total := 0
	for total < len(data) {
		n, err := c.conn.Write(data[total:])
		total += n
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
	}
	return nil
}

func (c *Channel) readFull(buf []byte) error {
	total := 0
	for total < len(buf) {
		n, err := c.conn.Read(buf[total:])
		total += n
		if total == len(buf) {
			return nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) && total > 0 {
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
	return nil
}
