// Package process implements the inter-thread, intra-process allocator.
//
// # Overview
//
// A cluster of N workers shares one Registry: a mutex-guarded, type-erased
// table from channel id to the per-worker endpoint bundles for that id.
// Workers agree out of band on a channel id and its payload type, then each
// calls Allocate exactly once for that id. Whichever call observes the id
// missing constructs the full N-slot entry inside the critical section; the
// race is benign because every caller would build the identical entry. Each
// caller then takes (consumes) its own slot, and the entry is deleted once
// all N slots are gone, at which point the id is reusable — with any type.
//
// The out-of-band agreement is a documented contract gap, not something the
// registry enforces: if two live workers disagree about an id's payload
// type, the loser gets a TypeMismatchError instead of a silently
// reinterpreted entry. Double allocation by one worker is ErrSlotConsumed.
// Both are fatal programming errors; this layer never recovers.
//
// The lock covers table bookkeeping only — lookup, construction, slot take,
// drain check — never data transfer, so contention is confined to setup.
// Go mutexes do not poison: a panic inside the critical section unwinds the
// worker goroutine and takes the process down, which is the intended
// disposition when the table can no longer be trusted.
//
// # Setup protocol
//
// NewCluster wires N Builders with one-shot buzzer handoff channels and the
// counter queues. Each worker calls Build on its own goroutine; Build sends
// this worker's buzzer to every peer (itself included) and only then
// receives one buzzer from each peer. The send-all-then-receive-all order
// is load-bearing: the handoff channels are buffered, not rendezvous, and
// receiving first could leave every worker blocked with no sender running.
package process
