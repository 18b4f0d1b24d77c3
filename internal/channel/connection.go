package channel

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/omochice/netbattle/pkg/protocol"
)

// ErrFrameSize is returned when a WebSocket message does not hold exactly
// one frame
var ErrFrameSize = errors.New("frame size mismatch")

// Connection is the byte stream a Channel frames over. A net.Conn
// satisfies it as is
type Connection interface {
	Write(data []byte) (int, error)
	Read(buf []byte) (int, error)
	Close() error
	RemoteAddr() net.Addr
}

// WebSocketConnection carries exactly one frame per binary message.
// Every write to the socket, including pong and close replies issued
// while reading, goes through writeMu so control frames never split a
// data frame
type WebSocketConnection struct {
	conn    net.Conn
	reader  wsutil.Reader
	writeMu sync.Mutex
}

// NewWebSocketConnection wraps an upgraded client connection. br is the
// reader returned by ws.Dial and may be nil
func NewWebSocketConnection(conn net.Conn, br *bufio.Reader) *WebSocketConnection {
	wc := &WebSocketConnection{conn: conn}

	var src io.Reader = conn
	if br != nil {
		src = br
	}
	wc.reader = wsutil.Reader{
		Source:         src,
		State:          ws.StateClientSide,
		OnIntermediate: wc.handleControl,
	}
	return wc
}

func (wc *WebSocketConnection) handleControl(h ws.Header, r io.Reader) error {
	wc.writeMu.Lock()
	defer wc.writeMu.Unlock()
	return wsutil.ControlFrameHandler(wc.conn, ws.StateClientSide)(h, r)
}

// Write sends data as a single binary message. data must be one whole
// request frame
func (wc *WebSocketConnection) Write(data []byte) (int, error) {
	if len(data) != protocol.RequestSize {
		return 0, fmt.Errorf("%w: sending %d bytes, want %d", ErrFrameSize, len(data), protocol.RequestSize)
	}

	wc.writeMu.Lock()
	defer wc.writeMu.Unlock()
	if err := wsutil.WriteClientBinary(wc.conn, data); err != nil {
		return 0, err
	}
	return len(data), nil
}

// Read returns the next binary message, which must be one whole response
// frame. buf must have room for it
func (wc *WebSocketConnection) Read(buf []byte) (int, error) {
	data, err := wc.nextBinary()
	if err != nil {
		return 0, err
	}
	if len(data) != protocol.ResponseSize {
		return 0, fmt.Errorf("%w: received %d bytes, want %d", ErrFrameSize, len(data), protocol.ResponseSize)
	}
	if len(buf) < len(data) {
		return 0, io.ErrShortBuffer
	}
	return copy(buf, data), nil
}

func (wc *WebSocketConnection) nextBinary() ([]byte, error) {
	for {
		hdr, err := wc.reader.NextFrame()
		if err != nil {
			return nil, err
		}
		if hdr.OpCode.IsControl() {
			if err := wc.handleControl(hdr, &wc.reader); err != nil {
				return nil, err
			}
			continue
		}
		if hdr.OpCode != ws.OpBinary {
			if err := wc.reader.Discard(); err != nil {
				return nil, err
			}
			continue
		}
		return io.ReadAll(&wc.reader)
	}
}

// Close sends a close frame and closes the socket
func (wc *WebSocketConnection) Close() error {
	wc.writeMu.Lock()
	body := ws.NewCloseFrameBody(ws.StatusNormalClosure, "")
	_ = ws.WriteFrame(wc.conn, ws.MaskFrameInPlace(ws.NewCloseFrame(body)))
	wc.writeMu.Unlock()
	return wc.conn.Close()
}

func (wc *WebSocketConnection) RemoteAddr() net.Addr {
	return wc.conn.RemoteAddr()
}
