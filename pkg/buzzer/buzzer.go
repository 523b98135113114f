// Package buzzer provides the cross-thread wake handle used by Loom workers.
//
// A Buzzer targets exactly one worker: the worker blocks in Wait (or
// WaitTimeout) and any peer holding a copy of the buzzer can interrupt that
// wait with Buzz. Copies share the same wake target, so buzzers are handed
// to peers by value.
//
// Buzz never blocks and coalesces: any number of buzzes between two waits
// wake the waiter exactly once. A buzz delivered while nobody is waiting is
// retained and satisfies the next wait immediately, which is what closes the
// check-then-sleep race in the worker event loop.
package buzzer

import "time"

// Buzzer wakes one specific worker. The zero value is not usable; construct
// with New and distribute copies.
type Buzzer struct {
	ch chan struct{}
}

// New creates a buzzer. The creating worker is the wake target; everyone
// else gets copies.
func New() Buzzer {
	return Buzzer{ch: make(chan struct{}, 1)}
}

// Buzz wakes the target worker if it is waiting, or arms the buzzer so the
// next wait returns immediately. Never blocks.
func (b Buzzer) Buzz() {
	select {
	case b.ch <- struct{}{}:
	default:
	}
}

// Wait blocks until the buzzer is buzzed.
func (b Buzzer) Wait() {
	<-b.ch
}

// WaitTimeout blocks until the buzzer is buzzed or d elapses. It reports
// whether it was woken by a buzz. d <= 0 waits indefinitely.
func (b Buzzer) WaitTimeout(d time.Duration) bool {
	if d <= 0 {
		<-b.ch
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-b.ch:
		return true
	case <-t.C:
		return false
	}
}
