package process

import (
	"fmt"
	"time"

	"github.com/rzbill/loom/internal/transport"
	"github.com/rzbill/loom/internal/transport/counters"
	"github.com/rzbill/loom/internal/transport/thread"
	"github.com/rzbill/loom/pkg/buzzer"
	logpkg "github.com/rzbill/loom/pkg/log"
)

// Builder stages one worker's share of a cluster before its thread runs.
// Build must be called exactly once, from the goroutine that will own the
// resulting Process.
type Builder struct {
	index int
	peers int

	registry *Registry

	// One-shot buzzer handoff slots. buzzersSend[j] delivers this worker's
	// buzzer to peer j; buzzersRecv[j] yields peer j's buzzer.
	buzzersSend []chan buzzer.Buzzer
	buzzersRecv []chan buzzer.Buzzer

	countersSend []*transport.Queue[transport.WorkerEvent]
	countersRecv *transport.Queue[transport.WorkerEvent]

	logger logpkg.Logger
	built  bool
}

// Option configures a cluster under construction.
type Option func(*clusterOptions)

type clusterOptions struct {
	logger        logpkg.Logger
	constructHook func(id uint64)
}

// WithLogger attaches a logger to every worker in the cluster. Setup-time
// events log at debug; the data path does not log.
func WithLogger(l logpkg.Logger) Option {
	return func(o *clusterOptions) { o.logger = l }
}

// WithConstructHook installs a registry construction hook (see
// Registry.SetConstructHook).
func WithConstructHook(fn func(id uint64)) Option {
	return func(o *clusterOptions) { o.constructHook = fn }
}

// NewCluster allocates a connected set of peers builders sharing one
// channel registry. Builder i belongs to worker i.
func NewCluster(peers int, opts ...Option) ([]*Builder, error) {
	if peers < 1 {
		return nil, fmt.Errorf("process: cluster needs at least one worker, got %d", peers)
	}
	o := clusterOptions{logger: logpkg.Nop()}
	for _, fn := range opts {
		fn(&o)
	}

	registry := NewRegistry()
	if o.constructHook != nil {
		registry.SetConstructHook(o.constructHook)
	}

	// Buzzer handoff matrix: handoff[i][j] carries worker i's buzzer to
	// worker j. Buffered so the send phase never blocks.
	handoff := make([][]chan buzzer.Buzzer, peers)
	for i := range handoff {
		handoff[i] = make([]chan buzzer.Buzzer, peers)
		for j := range handoff[i] {
			handoff[i][j] = make(chan buzzer.Buzzer, 1)
		}
	}

	countersSend := make([]*transport.Queue[transport.WorkerEvent], peers)
	for i := range countersSend {
		countersSend[i] = transport.NewQueue[transport.WorkerEvent]()
	}

	builders := make([]*Builder, peers)
	for i := 0; i < peers; i++ {
		send := make([]chan buzzer.Buzzer, peers)
		recv := make([]chan buzzer.Buzzer, peers)
		for j := 0; j < peers; j++ {
			send[j] = handoff[i][j]
			recv[j] = handoff[j][i]
		}
		builders[i] = &Builder{
			index:        i,
			peers:        peers,
			registry:     registry,
			buzzersSend:  send,
			buzzersRecv:  recv,
			countersSend: countersSend,
			countersRecv: countersSend[i],
			logger:       o.logger.With(logpkg.Component("transport"), logpkg.Int("worker", i)),
		}
	}
	return builders, nil
}

// Build runs the two-phase buzzer exchange and returns the worker's
// allocator handle. Phase one sends this worker's buzzer to every peer,
// itself included; phase two receives exactly one buzzer from each peer.
// Sending first is mandatory: the handoff slots are one-shot and
// non-rendezvous, so a worker that received first could block with no
// sender dispatched anywhere.
func (b *Builder) Build() (*Process, error) {
	if b.built {
		return nil, transport.ErrBuzzerExchange
	}
	b.built = true
	inner := thread.New()
	own := inner.Buzzer()
	for _, ch := range b.buzzersSend {
		select {
		case ch <- own:
		default:
			// One-shot slot already occupied.
			return nil, transport.ErrBuzzerExchange
		}
	}
	buzzers := make([]buzzer.Buzzer, 0, b.peers)
	for _, ch := range b.buzzersRecv {
		bz, ok := <-ch
		if !ok {
			return nil, transport.ErrBuzzerExchange
		}
		buzzers = append(buzzers, bz)
	}
	b.logger.Debug("worker built", logpkg.Int("peers", b.peers))
	return &Process{
		inner:        inner,
		index:        b.index,
		peers:        b.peers,
		registry:     b.registry,
		buzzers:      buzzers,
		countersSend: b.countersSend,
		countersRecv: b.countersRecv,
		logger:       b.logger,
	}, nil
}

// Process is one worker's allocator handle for inter-thread, intra-process
// communication. It composes the base thread allocator, the shared channel
// registry, the assembled buzzer list, and the counter inbox/outbox set.
type Process struct {
	inner *thread.Thread
	index int
	peers int

	registry *Registry
	buzzers  []buzzer.Buzzer

	countersSend []*transport.Queue[transport.WorkerEvent]
	countersRecv *transport.Queue[transport.WorkerEvent]

	logger logpkg.Logger
}

// Inner exposes the wrapped base allocator.
func (p *Process) Inner() *thread.Thread { return p.inner }

// Index returns this worker's index in [0, peers).
func (p *Process) Index() int { return p.index }

// Peers returns the cluster's worker count.
func (p *Process) Peers() int { return p.peers }

// Events returns the worker-owned progress-event queue.
func (p *Process) Events() *transport.EventQueue { return p.inner.Events() }

// AwaitEvents suspends the calling worker until its event queue is
// non-empty, a peer buzzes it, or timeout elapses. timeout <= 0 waits
// indefinitely. No other worker's progress is affected.
func (p *Process) AwaitEvents(timeout time.Duration) {
	p.inner.AwaitEvents(timeout)
}

// DrainCounters moves pending progress events from the counter inbox into
// the local event queue. Non-blocking; workers call it periodically.
func (p *Process) DrainCounters() {
	for {
		ev, ok := p.countersRecv.TryRecv()
		if !ok {
			return
		}
		p.inner.Events().Push(ev)
	}
}

// Registry exposes the shared channel table, for introspection.
func (p *Process) Registry() *Registry { return p.registry }

// Allocate resolves the endpoint set for a channel id: peers producer
// handles (index j sends to worker j) and this worker's single consumer
// handle, each wrapped with progress counting. Callable once per worker
// per live id; every worker in the cluster must allocate the same id with
// the same payload type T.
func Allocate[T any](p *Process, id uint64) ([]transport.Push[T], transport.Pull[T], error) {
	bun, constructed, err := take[T](p.registry, id, p.index, p.peers, p.buzzers)
	if err != nil {
		return nil, nil, fmt.Errorf("process: allocate channel %d: %w", id, err)
	}
	if constructed {
		p.logger.Debug("channel constructed", logpkg.Uint64("channel", id))
	}

	pushes := make([]transport.Push[T], 0, p.peers)
	for j, pp := range bun.pushers {
		pushes = append(pushes, counters.NewPusher[T](pp.push, p.index, id, p.countersSend[j], pp.buzz))
	}
	pull := counters.NewPuller[T](bun.puller, p.index, id, p.inner.Events())
	return pushes, pull, nil
}
