package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"transport/internal/services"
	"transport/internal/utils"
)

// Server accepts client connections and spawns one worker per connection,
// all bound to the same reservation service.
type Server struct {
	Addr string

	svc *services.ReservationService

	mu    sync.Mutex
	ln    net.Listener
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

func NewServer(addr string, svc *services.ReservationService) *Server {
	return &Server{
		Addr:  addr,
		svc:   svc,
		conns: make(map[net.Conn]struct{}),
	}
}

// ListenAndServe binds Addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen tcp: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts on ln until ctx is cancelled or the listener fails. On
// cancellation all live connections are closed and workers are waited for.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		ln.Close()
		s.closeConns()
	}()

	utils.LogEvent("", "tcp", "listening", ln.Addr().String())
	defer utils.LogEvent("", "tcp", "stopped", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return nil
			}
			utils.LogEvent("", "tcp", "accept_failed", err.Error())
			continue
		}

		s.track(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			w := newWorker(s.svc, conn)
			if err := w.run(); err != nil {
				utils.LogEvent("", "tcp", "worker_stopped", err.Error())
			}
		}()
	}
}

// ListenAddr reports the bound address, or "" before Serve.
func (s *Server) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

func (s *Server) track(conn net.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}
