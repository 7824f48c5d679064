// Package loggingtest provides a logging.Logger that records messages for
// assertions in tests.
package loggingtest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/nemanja-m/gopool/internal/shared/logging"
)

var _ logging.Logger = (*Recorder)(nil)

// Recorder captures every message as "[LEVEL] msg key=value ...". It is safe
// for concurrent use. Fatal is recorded but does not exit.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

func NewRecorder() *Recorder {
	return &Recorder{messages: make([]string, 0)}
}

func (r *Recorder) Debug(msg string, args ...any) {
	r.record("DEBUG", msg, args...)
}

func (r *Recorder) Info(msg string, args ...any) {
	r.record("INFO", msg, args...)
}

func (r *Recorder) Warn(msg string, args ...any) {
	r.record("WARN", msg, args...)
}

func (r *Recorder) Error(msg string, args ...any) {
	r.record("ERROR", msg, args...)
}

func (r *Recorder) Fatal(msg string, args ...any) {
	r.record("FATAL", msg, args...)
}

func (r *Recorder) record(level, msg string, args ...any) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", level, msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, b.String())
}

// Messages returns a copy of the recorded messages in order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

// Output joins all recorded messages with newlines.
func (r *Recorder) Output() string {
	return strings.Join(r.Messages(), "\n")
}
