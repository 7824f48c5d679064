package server

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/nemanja-m/gopool/internal/shared/config"
	"github.com/nemanja-m/gopool/internal/shared/logging"
)

// StaticHandler answers one HTTP/1.1 request per connection with a file from
// the static root, chosen by the first route whose pattern matches the
// request path. Unmatched requests get the not-found page with a 404.
type StaticHandler struct {
	root           string
	notFound       string
	routes         []config.RouteConfig
	readTimeout    time.Duration
	maxHeaderBytes int64
	logger         logging.Logger
}

func NewStaticHandler(
	listener config.ListenerConfig,
	static config.StaticConfig,
	routes []config.RouteConfig,
	logger logging.Logger,
) *StaticHandler {
	maxHeaderBytes := listener.MaxHeaderBytes
	if maxHeaderBytes <= 0 {
		maxHeaderBytes = http.DefaultMaxHeaderBytes
	}

	return &StaticHandler{
		root:           static.Root,
		notFound:       static.NotFound,
		routes:         routes,
		readTimeout:    listener.ReadTimeout,
		maxHeaderBytes: int64(maxHeaderBytes),
		logger:         logger,
	}
}

func (h *StaticHandler) ServeConn(conn net.Conn) {
	if h.readTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	}

	// Nothing past maxHeaderBytes is ever read, so a request line or header
	// block that never ends cannot grow the worker's memory.
	limited := &io.LimitedReader{R: conn, N: h.maxHeaderBytes}
	req, err := http.ReadRequest(bufio.NewReader(limited))
	if err != nil {
		h.logger.Warn("Failed to read request", "remote_addr", conn.RemoteAddr().String(), "error", err)
		if limited.N <= 0 {
			h.respond(conn, http.StatusRequestHeaderFieldsTooLarge, nil)
		} else {
			h.respond(conn, http.StatusBadRequest, nil)
		}
		return
	}
	defer req.Body.Close()

	route, ok := h.match(req)
	if !ok {
		h.serveFile(conn, http.StatusNotFound, h.notFound)
		return
	}

	if route.Delay > 0 {
		time.Sleep(route.Delay)
	}
	h.serveFile(conn, http.StatusOK, route.File)
}

// match returns the first route matching a GET request's path.
func (h *StaticHandler) match(req *http.Request) (config.RouteConfig, bool) {
	if req.Method != http.MethodGet {
		return config.RouteConfig{}, false
	}
	for _, route := range h.routes {
		matched, err := doublestar.Match(route.Pattern, req.URL.Path)
		if err != nil {
			h.logger.Error("Invalid route pattern", "pattern", route.Pattern, "error", err)
			continue
		}
		if matched {
			return route, true
		}
	}
	return config.RouteConfig{}, false
}

func (h *StaticHandler) serveFile(conn net.Conn, status int, name string) {
	if name == "" {
		h.respond(conn, status, nil)
		return
	}

	body, err := os.ReadFile(filepath.Join(h.root, name))
	if err != nil {
		h.logger.Error("Failed to read static file", "file", name, "error", err)
		h.respond(conn, http.StatusInternalServerError, nil)
		return
	}
	h.respond(conn, status, body)
}

func (h *StaticHandler) respond(w io.Writer, status int, body []byte) {
	resp := &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        make(http.Header),
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Close:         true,
	}
	if len(body) > 0 {
		resp.Header.Set("Content-Type", "text/html; charset=utf-8")
	}

	if err := resp.Write(w); err != nil {
		h.logger.Warn("Failed to write response", "status", status, "error", err)
	}
}
