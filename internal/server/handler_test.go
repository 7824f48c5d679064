package server

import (
	"bufio"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nemanja-m/gopool/internal/shared/config"
	"github.com/nemanja-m/gopool/internal/shared/logging/loggingtest"
)

func newTestStaticRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "hello.html"), []byte("<h1>Hello!</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "404.html"), []byte("<h1>Oops!</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs.html"), []byte("<h1>Docs</h1>"), 0o644))
	return root
}

const testMaxHeaderBytes = 1024

func newTestHandler(t *testing.T, root string, routes []config.RouteConfig) *StaticHandler {
	t.Helper()
	return NewStaticHandler(
		config.ListenerConfig{ReadTimeout: time.Second, MaxHeaderBytes: testMaxHeaderBytes},
		config.StaticConfig{Root: root, NotFound: "404.html"},
		routes,
		loggingtest.NewRecorder(),
	)
}

func parseResponse(t *testing.T, raw string) (*http.Response, string) {
	t.Helper()
	resp, err := http.ReadResponse(bufio.NewReader(strings.NewReader(raw)), nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestStaticHandler_Routes(t *testing.T) {
	root := newTestStaticRoot(t)
	routes := []config.RouteConfig{
		{Pattern: "/", File: "hello.html"},
		{Pattern: "/docs/**", File: "docs.html"},
	}

	tests := []struct {
		name       string
		request    string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "root serves hello page",
			request:    "GET / HTTP/1.1\r\nHost: localhost\r\n\r\n",
			wantStatus: http.StatusOK,
			wantBody:   "<h1>Hello!</h1>",
		},
		{
			name:       "glob route matches nested path",
			request:    "GET /docs/pool/close HTTP/1.1\r\nHost: localhost\r\n\r\n",
			wantStatus: http.StatusOK,
			wantBody:   "<h1>Docs</h1>",
		},
		{
			name:       "unknown path serves not found page",
			request:    "GET /missing HTTP/1.1\r\nHost: localhost\r\n\r\n",
			wantStatus: http.StatusNotFound,
			wantBody:   "<h1>Oops!</h1>",
		},
		{
			name:       "non GET method is not routed",
			request:    "POST / HTTP/1.1\r\nHost: localhost\r\nContent-Length: 0\r\n\r\n",
			wantStatus: http.StatusNotFound,
			wantBody:   "<h1>Oops!</h1>",
		},
		{
			name:       "request line longer than header limit",
			request:    "GET /" + strings.Repeat("a", 64*testMaxHeaderBytes),
			wantStatus: http.StatusRequestHeaderFieldsTooLarge,
			wantBody:   "",
		},
		{
			name:       "headers longer than header limit",
			request:    "GET / HTTP/1.1\r\nHost: localhost\r\nX-Fill: " + strings.Repeat("b", 2*testMaxHeaderBytes) + "\r\n\r\n",
			wantStatus: http.StatusRequestHeaderFieldsTooLarge,
			wantBody:   "",
		},
		{
			name:       "malformed request",
			request:    "garbage\r\n\r\n",
			wantStatus: http.StatusBadRequest,
			wantBody:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, root, routes)
			resp, body := parseResponse(t, serveOverPipe(t, h, tt.request))

			require.Equal(t, tt.wantStatus, resp.StatusCode)
			require.Equal(t, tt.wantBody, body)
			require.Equal(t, int64(len(tt.wantBody)), resp.ContentLength)
		})
	}
}

func TestStaticHandler_RouteDelay(t *testing.T) {
	root := newTestStaticRoot(t)
	h := newTestHandler(t, root, []config.RouteConfig{
		{Pattern: "/sleep", File: "hello.html", Delay: 50 * time.Millisecond},
	})

	start := time.Now()
	resp, body := parseResponse(t, serveOverPipe(t, h, "GET /sleep HTTP/1.1\r\nHost: localhost\r\n\r\n"))

	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "<h1>Hello!</h1>", body)
}

func TestStaticHandler_MissingFile(t *testing.T) {
	root := t.TempDir()
	logger := loggingtest.NewRecorder()
	h := NewStaticHandler(
		config.ListenerConfig{ReadTimeout: time.Second},
		config.StaticConfig{Root: root, NotFound: "404.html"},
		[]config.RouteConfig{{Pattern: "/", File: "hello.html"}},
		logger,
	)

	resp, _ := parseResponse(t, serveOverPipe(t, h, "GET / HTTP/1.1\r\nHost: localhost\r\n\r\n"))

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Contains(t, logger.Output(), "[ERROR] Failed to read static file file=hello.html")
}
