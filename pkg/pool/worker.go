package pool

import (
	"runtime/debug"
	"time"
)

// worker owns one goroutine that drains the shared queue until it receives
// its terminate message. done is closed when the goroutine returns and acts
// as the join handle.
type worker struct {
	id   int
	pool *Pool
	done chan struct{}
}

func newWorker(id int, p *Pool) *worker {
	return &worker{
		id:   id,
		pool: p,
		done: make(chan struct{}),
	}
}

func (w *worker) start() {
	w.pool.running.Add(1)
	go w.run()
}

func (w *worker) run() {
	defer close(w.done)
	defer w.pool.running.Add(-1)

	for {
		msg := w.pool.queue.pop()

		switch msg.kind {
		case messageJob:
			w.pool.logger.Debug("Worker got a job; executing", "worker_id", w.id)
			w.execute(msg.task)
		case messageTerminate:
			w.pool.logger.Debug("Worker was told to terminate", "worker_id", w.id)
			return
		}
	}
}

// execute runs task to completion. A panic is confined to this call so the
// worker keeps serving the queue afterwards.
func (w *worker) execute(task Task) {
	p := w.pool
	w.notify("TaskStarted", func() { p.observer.TaskStarted(w.id) })
	start := time.Now()

	defer func() {
		r := recover()
		elapsed := time.Since(start)

		if r != nil {
			p.panicked.Add(1)
			p.logger.Error("Task panicked",
				"worker_id", w.id,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			if p.onPanic != nil {
				w.notify("PanicHandler", func() { p.onPanic(w.id, r) })
			}
		} else {
			p.completed.Add(1)
		}
		w.notify("TaskFinished", func() { p.observer.TaskFinished(w.id, elapsed, r != nil) })
	}()

	task()
}

// notify runs a user supplied hook; a panic inside it is logged and dropped.
func (w *worker) notify(hook string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			w.pool.logger.Error("Hook panicked",
				"worker_id", w.id,
				"hook", hook,
				"panic", r,
			)
		}
	}()
	fn()
}
