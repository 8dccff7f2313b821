// Package dispatch provides the serialized completion context every
// asynchronous result is delivered on. It is the moral equivalent of a
// UI main thread: one goroutine, strict FIFO order, exactly-once
// execution of each posted function, so consumers never need their own
// synchronization around completion handlers.
package dispatch

import (
	"sync"
)

// Queue runs posted functions one at a time on a dedicated goroutine,
// in the order they were posted.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tasks  []func()
	closed bool
	done   chan struct{}
}

// New creates a Queue and starts its delivery goroutine.
func New() *Queue {
	q := &Queue{done: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Post enqueues fn for execution on the delivery goroutine. Posting to
// a closed queue is a no-op.
func (q *Queue) Post(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.tasks = append(q.tasks, fn)
	q.cond.Signal()
	q.mu.Unlock()
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return
		}
		fn := q.tasks[0]
		q.tasks = q.tasks[1:]
		q.mu.Unlock()
		fn()
	}
}

// Close drains any already-posted functions and stops the delivery
// goroutine. It blocks until the drain completes.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	q.cond.Signal()
	q.mu.Unlock()
	<-q.done
}
