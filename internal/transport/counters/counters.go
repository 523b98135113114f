// Package counters decorates transport endpoints with progress counting.
//
// The pusher decorator reports each send to the destination worker's
// counter inbox and buzzes it awake; the puller decorator records each
// successful receive into the local worker's event queue. Together they
// let a worker block on its event queue instead of polling every channel.
package counters

import (
	"github.com/rzbill/loom/internal/transport"
	"github.com/rzbill/loom/pkg/buzzer"
)

// Pusher counts sends on behalf of the destination worker. After each
// real send it emits a progress event into the destination's counter
// inbox and buzzes the destination awake. Flushes (nil elements) pass
// through uncounted.
type Pusher[T any] struct {
	inner   transport.Push[T]
	worker  int
	channel uint64
	inbox   *transport.Queue[transport.WorkerEvent]
	buzz    buzzer.Buzzer
}

// NewPusher wraps inner. worker is the sending worker's index, inbox the
// destination worker's counter inbox, buzz the destination's wake handle.
func NewPusher[T any](inner transport.Push[T], worker int, channel uint64, inbox *transport.Queue[transport.WorkerEvent], buzz buzzer.Buzzer) *Pusher[T] {
	return &Pusher[T]{inner: inner, worker: worker, channel: channel, inbox: inbox, buzz: buzz}
}

// Push forwards the element, then publishes the progress event and wakes
// the destination. A dead destination surfaces as ErrDisconnected.
func (c *Pusher[T]) Push(element *T) error {
	if err := c.inner.Push(element); err != nil {
		return err
	}
	if element == nil {
		return nil
	}
	ev := transport.WorkerEvent{
		Worker: c.worker,
		Event:  transport.Event{Channel: c.channel, Kind: transport.EventPushed, Count: 1},
	}
	if err := c.inbox.Send(ev); err != nil {
		return err
	}
	c.buzz.Buzz()
	return nil
}

// Puller counts receives for the local worker, recording a progress event
// into its event queue after each successful pull.
type Puller[T any] struct {
	inner   transport.Pull[T]
	worker  int
	channel uint64
	events  *transport.EventQueue
}

// NewPuller wraps inner. worker is the local worker's index and events its
// own event queue.
func NewPuller[T any](inner transport.Pull[T], worker int, channel uint64, events *transport.EventQueue) *Puller[T] {
	return &Puller[T]{inner: inner, worker: worker, channel: channel, events: events}
}

// Pull performs the non-blocking receive and records it when it yields an
// element.
func (c *Puller[T]) Pull() (*T, error) {
	v, err := c.inner.Pull()
	if err != nil {
		return nil, err
	}
	if v != nil {
		c.events.Push(transport.WorkerEvent{
			Worker: c.worker,
			Event:  transport.Event{Channel: c.channel, Kind: transport.EventPulled, Count: 1},
		})
	}
	return v, nil
}
