// Package pool runs submitted tasks on a fixed set of worker goroutines fed
// from one shared FIFO queue.
//
// A Pool is torn down with Close, which lets every task accepted so far run,
// then stops each worker with its own terminate message and waits for all of
// them to exit. Tasks cannot be cancelled once started and Close has no
// timeout, so a task that never returns blocks Close forever.
package pool

import (
	"errors"
	"sync/atomic"

	"github.com/nemanja-m/gopool/internal/shared/logging"
)

var (
	// ErrPoolClosed is returned by Submit and Close once Close has been called.
	ErrPoolClosed = errors.New("pool is closed")
	// ErrNilTask is returned when Submit is given a nil task.
	ErrNilTask = errors.New("task cannot be nil")
)

// Stats is a point-in-time snapshot of pool counters. Queued counts tasks
// waiting for a worker; terminate messages queued by Close are not included.
type Stats struct {
	Workers   int    `json:"workers"`
	Running   int    `json:"running"`
	Queued    int    `json:"queued"`
	Submitted uint64 `json:"submitted"`
	Completed uint64 `json:"completed"`
	Panicked  uint64 `json:"panicked"`
	Rejected  uint64 `json:"rejected"`
}

type Pool struct {
	workers []*worker
	queue   *queue

	logger   logging.Logger
	observer Observer
	onPanic  PanicHandler

	running   atomic.Int32
	submitted atomic.Uint64
	completed atomic.Uint64
	panicked  atomic.Uint64
	rejected  atomic.Uint64
}

// New starts a pool with size workers. It panics if size is not positive:
// a pool without workers could never run anything.
func New(size int, opts ...Option) *Pool {
	if size <= 0 {
		panic("pool: size must be greater than zero")
	}

	p := &Pool{
		workers:  make([]*worker, size),
		queue:    newQueue(),
		logger:   logging.NewNopLogger(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(p)
	}

	for id := range size {
		p.workers[id] = newWorker(id, p)
		p.workers[id].start()
	}

	p.logger.Info("Pool started", "workers", size)
	return p
}

// Submit queues task for execution and returns without waiting for it.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return ErrNilTask
	}

	if err := p.queue.push(jobMessage(task)); err != nil {
		p.rejected.Add(1)
		p.observer.TaskRejected()
		return ErrPoolClosed
	}

	p.submitted.Add(1)
	p.observer.TaskSubmitted()
	return nil
}

// Close stops accepting tasks, waits for every queued task to finish and
// joins all workers in id order. Calling Close again returns ErrPoolClosed.
//
// Close has no timeout. It must not be called synchronously from a task: the
// worker running that task would wait on its own exit and Close would never
// return. A task that needs to shut the pool down calls `go p.Close()`.
func (p *Pool) Close() error {
	terminates := make([]message, len(p.workers))
	for i := range terminates {
		terminates[i] = terminateMessage()
	}

	p.logger.Info("Sending terminate message to all workers", "workers", len(p.workers))
	if err := p.queue.seal(terminates...); err != nil {
		return ErrPoolClosed
	}

	p.logger.Info("Shutting down all workers")
	for _, w := range p.workers {
		p.logger.Debug("Shutting down worker", "worker_id", w.id)
		<-w.done
	}

	p.logger.Info("Pool stopped",
		"completed", p.completed.Load(),
		"panicked", p.panicked.Load(),
	)
	return nil
}

// Size returns the number of workers the pool was created with.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Running returns the number of worker goroutines that have not exited.
func (p *Pool) Running() int {
	return int(p.running.Load())
}

func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   len(p.workers),
		Running:   p.Running(),
		Queued:    p.queue.pendingJobs(),
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Panicked:  p.panicked.Load(),
		Rejected:  p.rejected.Load(),
	}
}
