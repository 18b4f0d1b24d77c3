// Package peer is a scripted game server speaking the fixed frame
// protocol over raw TCP and WebSocket on a single port
package peer

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
)

// Server accepts client connections and hands their frames to a Lobby
type Server struct {
	address  string
	listener net.Listener
	lobby    *Lobby
	quit     chan struct{}
	wg       sync.WaitGroup

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// New creates a Server listening on address once started
func New(address string, lobby *Lobby) *Server {
	return &Server{
		address: address,
		lobby:   lobby,
		quit:    make(chan struct{}),
		conns:   make(map[net.Conn]struct{}),
	}
}

// Start binds the listener and accepts connections in the background
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener
	log.Printf("Game server started on %s (TCP and WebSocket)", listener.Addr().String())

	s.wg.Add(1)
	go s.acceptConnections()
	return nil
}

// Stop closes the listener and every open connection, then waits for
// their handlers to return
func (s *Server) Stop() {
	close(s.quit)
	if s.listener != nil {
		s.listener.Close()
	}

	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// Addr returns the listening address
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// Lobby returns the lobby shared by all connections
func (s *Server) Lobby() *Lobby {
	return s.lobby
}

func (s *Server) acceptConnections() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
				log.Printf("Failed to accept connection: %v", err)
				continue
			}
		}

		if !s.track(conn) {
			conn.Close()
			return
		}
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.quit:
		return false
	default:
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

// handleConnection determines whether the connection is a WebSocket
// upgrade or raw TCP and serves it until it closes
func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer s.untrack(conn)

	proto, reader, err := detectProtocol(conn)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			log.Printf("Failed to peek connection: %v", err)
		}
		conn.Close()
		return
	}

	var fc frameConn
	switch proto {
	case protocolHTTP:
		wc, err := upgradeWebSocket(conn, reader)
		if err != nil {
			log.Printf("Failed to upgrade connection: %v", err)
			conn.Close()
			return
		}
		fc = wc
	default:
		fc = newTCPConn(conn, reader)
	}
	defer fc.Close()

	s.serve(fc)
}

func (s *Server) serve(fc frameConn) {
	p := newPlayer()
	log.Printf("Client connected from %s", fc.RemoteAddr())

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for resp := range p.out {
			if err := fc.WriteFrame(resp); err != nil {
				log.Printf("Failed to send %v to %s: %v", resp.Message, fc.RemoteAddr(), err)
				return
			}
		}
	}()

	defer func() {
		s.lobby.Leave(p)
		close(p.out)
		<-writerDone
		log.Printf("Client %s disconnected", fc.RemoteAddr())
	}()

	for {
		req, err := fc.ReadFrame()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Printf("Error reading from %s: %v", fc.RemoteAddr(), err)
			}
			return
		}

		log.Printf("Frame %v from %s", req.Command, fc.RemoteAddr())
		if !s.lobby.Handle(p, req) {
			return
		}
	}
}
