package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    slog.Level
		wantErr bool
	}{
		{name: "debug", input: "debug", want: slog.LevelDebug},
		{name: "upper case info", input: "INFO", want: slog.LevelInfo},
		{name: "warn", input: "warn", want: slog.LevelWarn},
		{name: "error", input: "error", want: slog.LevelError},
		{name: "unknown", input: "verbose", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSlogLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLoggerWithWriter(&buf, slog.LevelInfo, "json")

	logger.Debug("hidden")
	logger.Info("Worker got a job", "worker_id", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "Worker got a job", entry["msg"])
	require.Equal(t, float64(3), entry["worker_id"])
	require.True(t, strings.HasSuffix(entry["time"].(string), "Z"), "timestamp should be UTC")
}

func TestSlogLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLoggerWithWriter(&buf, slog.LevelDebug, "text")

	logger.Debug("Shutting down worker", "worker_id", 1)

	out := buf.String()
	require.Contains(t, out, "level=DEBUG")
	require.Contains(t, out, `msg="Shutting down worker"`)
	require.Contains(t, out, "worker_id=1")
}
