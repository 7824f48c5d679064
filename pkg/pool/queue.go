package pool

import (
	"errors"
	"sync"
)

var errQueueSealed = errors.New("queue is sealed")

// queue is an unbounded FIFO of messages shared by every worker.
// Producers never block on capacity; consumers block until a message arrives.
type queue struct {
	mu     sync.Mutex
	ready  *sync.Cond
	items  []message
	head   int
	jobs   int
	sealed bool
}

func newQueue() *queue {
	q := &queue{}
	q.ready = sync.NewCond(&q.mu)
	return q
}

// push enqueues m, or fails if the queue has been sealed.
func (q *queue) push(m message) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.sealed {
		return errQueueSealed
	}
	q.items = append(q.items, m)
	if m.kind == messageJob {
		q.jobs++
	}
	q.ready.Signal()
	return nil
}

// seal appends tail after everything already queued and rejects any later
// push. Both happen under one lock, so no push can land behind tail.
func (q *queue) seal(tail ...message) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.sealed {
		return errQueueSealed
	}
	q.sealed = true
	q.items = append(q.items, tail...)
	for _, m := range tail {
		if m.kind == messageJob {
			q.jobs++
		}
	}
	q.ready.Broadcast()
	return nil
}

// pop blocks until a message is available and removes it.
func (q *queue) pop() message {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.head == len(q.items) {
		q.ready.Wait()
	}

	m := q.items[q.head]
	q.items[q.head] = message{}
	q.head++
	if m.kind == messageJob {
		q.jobs--
	}

	// Reclaim the consumed prefix once it dominates the backing array.
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 64 && q.head*2 > len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return m
}

// pendingJobs counts queued job messages, leaving terminates out.
func (q *queue) pendingJobs() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.jobs
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}
