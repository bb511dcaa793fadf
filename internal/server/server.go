// Package server owns the TCP side of the game: the listener and the
// per-connection protocol sessions.
package server

import (
	"log"
	"net"
	"sync"

	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/config"
	"github.com/Nhom4-LTM-UDM17/BTL-LTM-N4/internal/game"
)

// Server accepts game connections and hands each one to a session.
type Server struct {
	cfg *config.Config
	mgr *game.GameManager

	mu     sync.Mutex
	ln     net.Listener
	closed bool
}

// New creates a game server bound to the manager.
func New(cfg *config.Config, mgr *game.GameManager) *Server {
	return &Server{cfg: cfg, mgr: mgr}
}

// ListenAndServe binds the configured address and accepts connections
// until Close. Each connection runs on its own goroutine.
func (s *Server) ListenAndServe() error {
	addr := net.JoinHostPort(s.cfg.GameHost, s.cfg.GamePort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return nil
	}
	s.ln = ln
	s.mu.Unlock()

	log.Printf("[TCP] game server listening on %s", addr)
	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			log.Printf("[TCP] accept error: %v", err)
			continue
		}
		go s.handleConn(conn)
	}
}

// Close stops accepting. Established connections are torn down by the
// manager's shutdown, which closes every client.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	ln := s.ln
	s.mu.Unlock()
	if ln != nil {
		ln.Close()
	}
}

func (s *Server) handleConn(conn net.Conn) {
	sess := newSession(conn, s.mgr)
	sess.run()
}
