package server

import (
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/nemanja-m/gopool/internal/shared/logging"
)

// Handler serves a single accepted connection. The caller closes conn after
// ServeConn returns.
type Handler interface {
	ServeConn(conn net.Conn)
}

type HandlerFunc func(conn net.Conn)

func (f HandlerFunc) ServeConn(conn net.Conn) {
	f(conn)
}

type Middleware func(Handler) Handler

// countingConn wraps net.Conn to capture the number of bytes written
type countingConn struct {
	net.Conn
	written int
}

func (c *countingConn) Write(b []byte) (int, error) {
	n, err := c.Conn.Write(b)
	c.written += n
	return n, err
}

// LoggingMiddleware logs every connection with an id, remote address, bytes written and duration
func LoggingMiddleware(logger logging.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(conn net.Conn) {
			start := time.Now()
			connID := uuid.New().String()

			wrapped := &countingConn{Conn: conn}
			next.ServeConn(wrapped)

			logger.Info("Connection served",
				"conn_id", connID,
				"remote_addr", conn.RemoteAddr().String(),
				"bytes", wrapped.written,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// RecoveryMiddleware recovers from panics in the wrapped handler, logs them
// and answers with a 500 if the connection is still writable.
func RecoveryMiddleware(logger logging.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(conn net.Conn) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						"remote_addr", conn.RemoteAddr().String(),
						"error", err,
					)
					_, _ = conn.Write([]byte("HTTP/1.1 500 Internal Server Error\r\n\r\n"))
				}
			}()
			next.ServeConn(conn)
		})
	}
}

// ChainMiddleware chains multiple middleware functions together
func ChainMiddleware(handler Handler, middlewares ...Middleware) Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}
