// Package notify implements per-service change broadcasting: observers
// subscribe with a callback and receive every published value on the
// shared dispatch queue.
package notify

import (
	"sync"

	"github.com/google/uuid"

	"github.com/pictora/pictora/internal/dispatch"
)

// Subscription identifies one registered observer. Cancel removes it;
// cancelling twice is harmless.
type Subscription struct {
	id     uuid.UUID
	once   sync.Once
	cancel func()
}

// Cancel removes the observer from its notifier.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// Notifier broadcasts values of type T to all current subscribers.
type Notifier[T any] struct {
	mu    sync.Mutex
	subs  map[uuid.UUID]func(T)
	queue *dispatch.Queue
}

// NewNotifier creates a Notifier delivering on the given queue.
func NewNotifier[T any](queue *dispatch.Queue) *Notifier[T] {
	return &Notifier[T]{
		subs:  make(map[uuid.UUID]func(T)),
		queue: queue,
	}
}

// Subscribe registers fn to be called for every subsequent Publish.
func (n *Notifier[T]) Subscribe(fn func(T)) *Subscription {
	id := uuid.New()

	n.mu.Lock()
	n.subs[id] = fn
	n.mu.Unlock()

	return &Subscription{
		id: id,
		cancel: func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
		},
	}
}

// Publish delivers value to every subscriber registered at the time of
// the call, on the dispatch queue.
func (n *Notifier[T]) Publish(value T) {
	n.mu.Lock()
	observers := make([]func(T), 0, len(n.subs))
	for _, fn := range n.subs {
		observers = append(observers, fn)
	}
	n.mu.Unlock()

	for _, fn := range observers {
		fn := fn
		n.queue.Post(func() {
			fn(value)
		})
	}
}
