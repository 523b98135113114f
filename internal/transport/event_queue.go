package transport

import (
	"time"

	"github.com/rzbill/loom/pkg/buzzer"
)

// EventQueue is a worker-owned, ordered queue of progress events with an
// attached wake buzzer. Only the owning worker pops and awaits; pushes come
// from the owner's own endpoints while it runs. Peers never touch the queue
// directly: they buzz, and the owner drains its counter inbox into the
// queue itself.
type EventQueue struct {
	queue *Queue[WorkerEvent]
	wake  buzzer.Buzzer
}

// NewEventQueue creates an empty event queue with a fresh buzzer.
func NewEventQueue() *EventQueue {
	return &EventQueue{queue: NewQueue[WorkerEvent](), wake: buzzer.New()}
}

// Push appends an event and arms the wake buzzer.
func (q *EventQueue) Push(ev WorkerEvent) {
	// The queue is owner-consumed and never closed.
	_ = q.queue.Send(ev)
	q.wake.Buzz()
}

// Pop removes the oldest event, if any. Never blocks.
func (q *EventQueue) Pop() (WorkerEvent, bool) {
	return q.queue.TryRecv()
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	return q.queue.Len()
}

// Wake returns the buzzer that interrupts Await. Copies handed to peers
// share the same wake target.
func (q *EventQueue) Wake() buzzer.Buzzer {
	return q.wake
}

// Await blocks the calling worker until the queue is non-empty, the buzzer
// is buzzed, or timeout elapses. timeout <= 0 waits indefinitely. Only the
// caller is suspended; a wake with a still-empty queue is legitimate and
// means a counter inbox needs draining.
func (q *EventQueue) Await(timeout time.Duration) {
	if q.Len() > 0 {
		return
	}
	q.wake.WaitTimeout(timeout)
}
