package process

import (
	"reflect"
	"sync"

	"github.com/rzbill/loom/internal/transport"
	"github.com/rzbill/loom/pkg/buzzer"
)

// Registry is the shared, type-erased channel table for one cluster. It
// maps a channel id to the per-worker slot table of pre-built endpoint
// bundles. All bookkeeping happens under a single mutex; data transfer
// never does.
type Registry struct {
	mu          sync.Mutex
	entries     map[uint64]*tableEntry
	onConstruct func(id uint64)
}

// tableEntry tags the erased per-type state with the payload type it was
// constructed for, so mismatched reuse fails explicitly.
type tableEntry struct {
	typeName string
	state    any // *channelState[T]
}

// channelState holds the slot table for one channel id. slots[i] is worker
// i's bundle until consumed, then nil.
type channelState[T any] struct {
	slots []*bundle[T]
}

// bundle is what one worker receives for one channel id: a full set of
// producer handles (one per destination, each paired with the destination's
// buzzer) and the consumer end of this worker's own sub-channel.
type bundle[T any] struct {
	pushers []peerPusher[T]
	puller  *transport.Puller[T]
}

// peerPusher pairs a producer handle with the destination worker's buzzer.
type peerPusher[T any] struct {
	push transport.Pusher[T]
	buzz buzzer.Buzzer
}

// NewRegistry creates an empty channel table.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[uint64]*tableEntry)}
}

// SetConstructHook installs a function invoked (under the registry lock)
// each time a fresh entry is constructed. Instrumentation only.
func (r *Registry) SetConstructHook(fn func(id uint64)) {
	r.mu.Lock()
	r.onConstruct = fn
	r.mu.Unlock()
}

// Len returns the number of live channel entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Contains reports whether id has a live entry.
func (r *Registry) Contains(id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[id]
	return ok
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

// take resolves one worker's bundle for id, constructing the entry on
// first touch. Exactly one critical section covers lookup, construction,
// the checked type assertion, the slot take, and the fully-drained check.
// constructed reports whether this call built the entry.
func take[T any](r *Registry, id uint64, index, peers int, buzzers []buzzer.Buzzer) (b *bundle[T], constructed bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		entry = &tableEntry{typeName: typeName[T](), state: construct[T](peers, buzzers)}
		r.entries[id] = entry
		constructed = true
		if r.onConstruct != nil {
			r.onConstruct(id)
		}
	}

	state, ok := entry.state.(*channelState[T])
	if !ok {
		return nil, constructed, &transport.TypeMismatchError{Channel: id, Want: typeName[T](), Have: entry.typeName}
	}

	b = state.slots[index]
	if b == nil {
		return nil, constructed, transport.ErrSlotConsumed
	}
	state.slots[index] = nil

	empty := true
	for _, s := range state.slots {
		if s != nil {
			empty = false
			break
		}
	}
	if empty {
		delete(r.entries, id)
	}
	return b, constructed, nil
}

// construct builds the full peers x peers endpoint matrix for one id: one
// many-to-one sub-channel per destination worker, a producer handle per
// eventual caller for each of them, and one consumer handle per slot.
func construct[T any](peers int, buzzers []buzzer.Buzzer) *channelState[T] {
	pushers := make([]peerPusher[T], peers)
	pullers := make([]*transport.Puller[T], peers)
	for j := 0; j < peers; j++ {
		q := transport.NewQueue[T]()
		pushers[j] = peerPusher[T]{push: transport.NewPusher(q), buzz: buzzers[j]}
		pullers[j] = transport.NewPuller(q)
	}

	state := &channelState[T]{slots: make([]*bundle[T], peers)}
	for i := 0; i < peers; i++ {
		clones := make([]peerPusher[T], peers)
		copy(clones, pushers)
		state.slots[i] = &bundle[T]{pushers: clones, puller: pullers[i]}
	}
	return state
}
