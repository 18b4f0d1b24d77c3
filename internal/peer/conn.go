package peer

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/omochice/netbattle/pkg/protocol"
)

// frameConn abstracts a client connection carrying whole frames over
// either raw TCP or WebSocket
type frameConn interface {
	ReadFrame() (protocol.RequestFrame, error)
	WriteFrame(protocol.ResponseFrame) error
	Close() error
	RemoteAddr() string
}

type protocolType int

const (
	protocolTCP protocolType = iota
	protocolHTTP
)

// detectProtocol peeks at the first bytes to determine protocol type.
// A request frame starts with a little-endian command number, which
// can never spell an HTTP method
func detectProtocol(conn net.Conn) (protocolType, *bufio.Reader, error) {
	reader := bufio.NewReader(conn)

	peek, err := reader.Peek(4)
	if err != nil {
		return protocolTCP, reader, err
	}

	if bytes.HasPrefix(peek, []byte("GET ")) {
		return protocolHTTP, reader, nil
	}
	return protocolTCP, reader, nil
}

// tcpConn reads fixed-size frames straight off the stream
type tcpConn struct {
	conn   net.Conn
	reader *bufio.Reader
}

func newTCPConn(conn net.Conn, reader *bufio.Reader) *tcpConn {
	return &tcpConn{conn: conn, reader: reader}
}

func (c *tcpConn) ReadFrame() (protocol.RequestFrame, error) {
	var req protocol.RequestFrame
	buf := make([]byte, protocol.RequestSize)
	if _, err := io.ReadFull(c.reader, buf); err != nil {
		return req, err
	}
	return req, req.Decode(buf)
}

func (c *tcpConn) WriteFrame(resp protocol.ResponseFrame) error {
	data, err := resp.Encode()
	if err != nil {
		return err
	}
	_, err = c.conn.Write(data)
	return err
}

func (c *tcpConn) Close() error {
	return c.conn.Close()
}

func (c *tcpConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// wsConn carries one frame per binary WebSocket message. Control replies
// written while reading share writeMu with outgoing frames
type wsConn struct {
	conn    net.Conn
	reader  wsutil.Reader
	writeMu sync.Mutex
}

// upgradeWebSocket completes the HTTP upgrade on a connection whose first
// bytes have already been peeked into reader
func upgradeWebSocket(conn net.Conn, reader *bufio.Reader) (*wsConn, error) {
	rw := struct {
		io.Reader
		io.Writer
	}{reader, conn}

	if _, err := ws.Upgrade(rw); err != nil {
		return nil, err
	}

	c := &wsConn{conn: conn}
	c.reader = wsutil.Reader{
		Source:         reader,
		State:          ws.StateServerSide,
		OnIntermediate: c.handleControl,
	}
	return c, nil
}

func (c *wsConn) handleControl(h ws.Header, r io.Reader) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wsutil.ControlFrameHandler(c.conn, ws.StateServerSide)(h, r)
}

func (c *wsConn) ReadFrame() (protocol.RequestFrame, error) {
	var req protocol.RequestFrame
	for {
		hdr, err := c.reader.NextFrame()
		if err != nil {
			return req, err
		}
		if hdr.OpCode.IsControl() {
			if err := c.handleControl(hdr, &c.reader); err != nil {
				return req, err
			}
			continue
		}
		if hdr.OpCode != ws.OpBinary {
			if err := c.reader.Discard(); err != nil {
				return req, err
			}
			continue
		}

		data, err := io.ReadAll(&c.reader)
		if err != nil {
			return req, err
		}
		return req, req.Decode(data)
	}
}

func (c *wsConn) WriteFrame(resp protocol.ResponseFrame) error {
	data, err := resp.Encode()
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wsutil.WriteServerBinary(c.conn, data)
}

func (c *wsConn) Close() error {
	c.writeMu.Lock()
	body := ws.NewCloseFrameBody(ws.StatusNormalClosure, "")
	_ = ws.WriteFrame(c.conn, ws.NewCloseFrame(body))
	c.writeMu.Unlock()
	return c.conn.Close()
}

func (c *wsConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
