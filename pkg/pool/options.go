package pool

import (
	"time"

	"github.com/nemanja-m/gopool/internal/shared/logging"
)

// Observer receives task lifecycle events. Implementations must be safe for
// concurrent use since every worker reports to the same Observer.
// TaskSubmitted and TaskRejected run on the goroutine calling Submit.
// TaskStarted and TaskFinished run on the worker; a panic there is logged and
// does not stop the worker.
type Observer interface {
	TaskSubmitted()
	TaskRejected()
	TaskStarted(workerID int)
	TaskFinished(workerID int, elapsed time.Duration, panicked bool)
}

// PanicHandler is called on the worker goroutine after a task panics. A panic
// inside the handler itself is logged and does not stop the worker.
type PanicHandler func(workerID int, recovered any)

type Option func(*Pool)

func WithLogger(logger logging.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithObserver(observer Observer) Option {
	return func(p *Pool) {
		if observer != nil {
			p.observer = observer
		}
	}
}

func WithPanicHandler(handler PanicHandler) Option {
	return func(p *Pool) {
		p.onPanic = handler
	}
}

type nopObserver struct{}

func (nopObserver) TaskSubmitted() {}
func (nopObserver) TaskRejected() {}
func (nopObserver) TaskStarted(int) {}
func (nopObserver) TaskFinished(int, time.Duration, bool) {}
