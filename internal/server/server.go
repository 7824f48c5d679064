package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/nemanja-m/gopool/internal/shared/logging"
	"github.com/nemanja-m/gopool/pkg/pool"
)

// Submitter runs tasks asynchronously. *pool.Pool implements it.
type Submitter interface {
	Submit(task pool.Task) error
}

// Server accepts TCP connections and hands each one to a Submitter, so the
// number of connections served at once is bounded by the pool size.
type Server struct {
	submitter      Submitter
	handler        Handler
	maxConnections int
	logger         logging.Logger
}

// NewServer returns a Server. maxConnections > 0 stops the accept loop after
// that many connections have been handed off.
func NewServer(submitter Submitter, handler Handler, maxConnections int, logger logging.Logger) *Server {
	return &Server{
		submitter:      submitter,
		handler:        handler,
		maxConnections: maxConnections,
		logger:         logger,
	}
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.logger.Info("Listening", "addr", ln.Addr().String())
	return s.Serve(ctx, ln)
}

// Serve runs the accept loop on ln until ctx is cancelled, ln is closed or
// the connection limit is reached. It always closes ln before returning.
// Connections already handed off keep running on the pool.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer ln.Close()

	accepted := 0
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		accepted++

		if err := s.submitter.Submit(s.connTask(conn)); err != nil {
			s.logger.Warn("Connection rejected",
				"remote_addr", conn.RemoteAddr().String(),
				"error", err,
			)
			_ = conn.Close()
			if errors.Is(err, pool.ErrPoolClosed) {
				return err
			}
		}

		if s.maxConnections > 0 && accepted >= s.maxConnections {
			s.logger.Info("Connection limit reached; shutting down", "accepted", accepted)
			return nil
		}
	}
}

func (s *Server) connTask(conn net.Conn) pool.Task {
	return func() {
		defer conn.Close()
		s.handler.ServeConn(conn)
	}
}
