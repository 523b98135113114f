package transport

import "sync"

// Queue is an unbounded multi-producer single-consumer FIFO queue.
//
// Send never blocks and TryRecv never waits, which is the contract the
// intra-process endpoints need: backpressure is deliberately absent at this
// layer. Elements from one producer are observed in send order; no order is
// defined across producers.
//
// Close belongs to the consumer side. Sends after Close fail with
// ErrDisconnected so a producer learns its peer is gone.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	head   int
	closed bool
}

// NewQueue creates an empty queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Send appends v. Returns ErrDisconnected when the consumer has closed.
func (q *Queue[T]) Send(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrDisconnected
	}
	q.items = append(q.items, v)
	return nil
}

// TryRecv removes and returns the oldest element, if any.
func (q *Queue[T]) TryRecv() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head >= len(q.items) {
		var zero T
		return zero, false
	}
	v := q.items[q.head]
	var zero T
	q.items[q.head] = zero
	q.head++
	// Reclaim the consumed prefix once it dominates the backing array.
	if q.head > 32 && q.head*2 >= len(q.items) {
		q.items = append(q.items[:0], q.items[q.head:]...)
		q.head = 0
	}
	return v, true
}

// Len returns the number of pending elements.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// Close marks the consumer gone. Pending elements remain readable; further
// sends fail. Close is idempotent.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}
