package channel_test

import (
	"bytes"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/omochice/netbattle/internal/channel"
	"github.com/omochice/netbattle/pkg/protocol"
)

// chunkConn is a Connection that moves at most chunk bytes per call
type chunkConn struct {
	mu       sync.Mutex
	chunk    int
	in       *bytes.Reader
	out      bytes.Buffer
	writeErr error
	readErr  error
	writes   int
	reads    int
	closed   bool
}

func (c *chunkConn) Write(data []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes++
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	n := min(c.chunk, len(data))
	c.out.Write(data[:n])
	return n, nil
}

func (c *chunkConn) Read(buf []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++
	if c.in.Len() == 0 && c.readErr != nil {
		return 0, c.readErr
	}
	n := min(c.chunk, len(buf))
	return c.in.Read(buf[:n])
}

func (c *chunkConn) Close() error {
	c.closed = true
	return nil
}

func (c *chunkConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 5000}
}

var _ channel.Connection = (*chunkConn)(nil)

func encodeResponses(t *testing.T, frames ...protocol.ResponseFrame) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, f := range frames {
		data, err := f.Encode()
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		buf.Write(data)
	}
	return buf.Bytes()
}

func TestChannel_SendFrame_PartialWrites(t *testing.T) {
	for _, chunk := range []int{1, 3, 7, protocol.RequestSize} {
		conn := &chunkConn{chunk: chunk, in: bytes.NewReader(nil)}
		ch := channel.New(conn)

		req := protocol.NewLogin("alice")
		if err := ch.SendFrame(req); err != nil {
			t.Fatalf("chunk %d: SendFrame() error = %v", chunk, err)
		}

		want, _ := req.Encode()
		if !bytes.Equal(conn.out.Bytes(), want) {
			t.Errorf("chunk %d: wrote %x, want %x", chunk, conn.out.Bytes(), want)
		}
		wantWrites := (protocol.RequestSize + chunk - 1) / chunk
		if conn.writes != wantWrites {
			t.Errorf("chunk %d: %d writes, want %d", chunk, conn.writes, wantWrites)
		}
	}
}

func TestChannel_ReceiveFrame_PartialReads(t *testing.T) {
	first := protocol.NewResponse(protocol.MessageLoginSuccess, "")
	second := protocol.NewResponse(protocol.MessageFriendAcceptBattle, "carol")
	second.Battle[0] = 0xAB

	for _, chunk := range []int{1, 5, 64, protocol.ResponseSize + 3} {
		conn := &chunkConn{chunk: chunk, in: bytes.NewReader(encodeResponses(t, first, second))}
		ch := channel.New(conn)

		for i, want := range []protocol.ResponseFrame{first, second} {
			got, err := ch.ReceiveFrame()
			if err != nil {
				t.Fatalf("chunk %d frame %d: ReceiveFrame() error = %v", chunk, i, err)
			}
			if got != want {
				t.Errorf("chunk %d frame %d: got %+v, want %+v", chunk, i, got, want)
			}
		}
	}
}

func TestChannel_ReceiveFrame_TruncatedFrame(t *testing.T) {
	data := encodeResponses(t, protocol.NewResponse(protocol.MessageYouAreDead, ""))
	conn := &chunkConn{chunk: 10, in: bytes.NewReader(data[:protocol.ResponseSize/2]), readErr: io.EOF}
	ch := channel.New(conn)

	_, err := ch.ReceiveFrame()
	if !errors.Is(err, channel.ErrBroken) {
		t.Fatalf("ReceiveFrame() error = %v, want ErrBroken", err)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReceiveFrame() error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestChannel_ReceiveFrame_EOF(t *testing.T) {
	conn := &chunkConn{chunk: 10, in: bytes.NewReader(nil), readErr: io.EOF}
	ch := channel.New(conn)

	_, err := ch.ReceiveFrame()
	if !errors.Is(err, channel.ErrBroken) || !errors.Is(err, io.EOF) {
		t.Errorf("ReceiveFrame() error = %v, want ErrBroken wrapping io.EOF", err)
	}
}

func TestChannel_SendFrame_WriteError(t *testing.T) {
	conn := &chunkConn{chunk: 4, in: bytes.NewReader(nil), writeErr: errors.New("broken pipe")}
	ch := channel.New(conn)

	err := ch.SendFrame(protocol.NewCommand(protocol.CommandLogout))
	if !errors.Is(err, channel.ErrBroken) {
		t.Errorf("SendFrame() error = %v, want ErrBroken", err)
	}
}

func TestChannel_Close(t *testing.T) {
	conn := &chunkConn{chunk: 4, in: bytes.NewReader(nil)}
	ch := channel.New(conn)

	if err := ch.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if !conn.closed {
		t.Error("connection should be closed")
	}
	if err := ch.SendFrame(protocol.NewCommand(protocol.CommandUserQuit)); !errors.Is(err, channel.ErrClosed) {
		t.Errorf("SendFrame() after Close error = %v, want ErrClosed", err)
	}
	if _, err := ch.ReceiveFrame(); !errors.Is(err, channel.ErrClosed) {
		t.Errorf("ReceiveFrame() after Close error = %v, want ErrClosed", err)
	}
}

func TestChannel_CloseUnblocksReceive(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()

	ch := channel.New(client)

	errCh := make(chan error, 1)
	go func() {
		_, err := ch.ReceiveFrame()
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	ch.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, channel.ErrClosed) {
			t.Errorf("ReceiveFrame() error = %v, want ErrClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for ReceiveFrame to return")
	}
}

func TestChannel_OverPipe(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	ch := channel.New(client)

	go func() {
		buf := make([]byte, protocol.RequestSize)
		if _, err := io.ReadFull(server, buf); err != nil {
			return
		}
		var req protocol.RequestFrame
		if err := req.Decode(buf); err != nil {
			return
		}
		resp := protocol.NewResponse(protocol.MessageLoginSuccess, req.User())
		data, _ := resp.Encode()
		server.Write(data)
	}()

	if err := ch.SendFrame(protocol.NewLogin("alice")); err != nil {
		t.Fatalf("SendFrame() error = %v", err)
	}

	resp, err := ch.ReceiveFrame()
	if err != nil {
		t.Fatalf("ReceiveFrame() error = %v", err)
	}
	if resp.Message != protocol.MessageLoginSuccess || resp.Friend() != "alice" {
		t.Errorf("ReceiveFrame() = %v/%q, want LOGIN_SUCCESS/alice", resp.Message, resp.Friend())
	}
}

func TestDial_UnsupportedNetwork(t *testing.T) {
	if _, err := channel.Dial(testContext(t), "udp", "localhost:1"); err == nil {
		t.Error("expected error for unsupported network")
	}
}

func TestDial_TCP(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	defer listener.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		accepted <- conn
	}()

	ch, err := channel.Dial(testContext(t), channel.NetworkTCP, listener.Addr().String())
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer ch.Close()

	select {
	case conn := <-accepted:
		conn.Close()
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for accept")
	}

	if ch.RemoteAddr().String() != listener.Addr().String() {
		t.Errorf("RemoteAddr() = %v, want %v", ch.RemoteAddr(), listener.Addr())
	}
}
