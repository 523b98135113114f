// Package thread implements the base single-worker allocator.
//
// # Overview
//
// A Thread owns exactly what a worker needs regardless of transport: its
// index, its peer count, its progress-event queue, and the timeout-bounded
// wait on that queue. The intra-process allocator (transport/process) wraps
// a Thread and delegates these concerns to it.
//
// A Thread is also a complete allocator for the degenerate one-worker
// cluster: Allocate hands back a loopback channel whose single pusher and
// puller share one queue, with no registry involved.
package thread

import (
	"time"

	"github.com/rzbill/loom/internal/transport"
	"github.com/rzbill/loom/pkg/buzzer"
)

// Thread is the base allocator for a single worker.
type Thread struct {
	events *transport.EventQueue
}

// New creates a Thread with a fresh event queue.
func New() *Thread {
	return &Thread{events: transport.NewEventQueue()}
}

// Index returns the worker index. A lone thread is always worker 0.
func (t *Thread) Index() int { return 0 }

// Peers returns the worker count. A lone thread has one peer: itself.
func (t *Thread) Peers() int { return 1 }

// Events returns the worker-owned progress-event queue.
func (t *Thread) Events() *transport.EventQueue { return t.events }

// Buzzer returns a wake handle targeting this worker. Copies share the
// same wake target and are safe to hand to peers.
func (t *Thread) Buzzer() buzzer.Buzzer { return t.events.Wake() }

// AwaitEvents suspends the calling worker until its event queue is
// non-empty, it is buzzed, or timeout elapses. timeout <= 0 waits
// indefinitely.
func (t *Thread) AwaitEvents(timeout time.Duration) {
	t.events.Await(timeout)
}

// Allocate builds a loopback channel: one pusher and one puller over a
// shared queue. The id only names the channel; a thread allocator has no
// registry to coordinate through.
func Allocate[T any](t *Thread, id uint64) ([]transport.Push[T], transport.Pull[T], error) {
	q := transport.NewQueue[T]()
	pushes := []transport.Push[T]{transport.NewPusher(q)}
	return pushes, transport.NewPuller(q), nil
}
