package demo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	cfgpkg "github.com/rzbill/loom/internal/config"
	"github.com/rzbill/loom/internal/runtime"
	pebblestore "github.com/rzbill/loom/internal/storage/pebble"
	"github.com/rzbill/loom/internal/trace"
	"github.com/rzbill/loom/internal/transport"
	"github.com/rzbill/loom/internal/transport/process"
	logpkg "github.com/rzbill/loom/pkg/log"
)

// Options configures a demo run.
type Options struct {
	Workers  int
	Messages int
	Channel  uint64
	Fsync    pebblestore.FsyncMode
	Config   cfgpkg.Config
	Logger   logpkg.Logger
}

type payload struct {
	From int
	Seq  int
}

// Run builds a cluster, performs the all-to-all exchange, and blocks
// until every worker has received every message or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Workers < 1 {
		opts.Workers = opts.Config.Workers
	}
	if opts.Messages < 1 {
		opts.Messages = 10
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.Nop()
	}

	cfg := opts.Config
	cfg.Workers = opts.Workers
	rt, err := runtime.Open(runtime.Options{Config: cfg, Fsync: opts.Fsync, Logger: logger})
	if err != nil {
		return err
	}
	defer rt.Close()

	var journal *trace.Journal
	if cfg.Trace.Enabled {
		journal, err = rt.OpenJournal()
		if err != nil {
			return err
		}
	}

	builders, err := rt.NewCluster(opts.Workers)
	if err != nil {
		return err
	}

	logger.Info("demo starting",
		logpkg.Int("workers", opts.Workers),
		logpkg.Int("messages", opts.Messages),
		logpkg.Uint64("channel", opts.Channel),
	)

	start := time.Now()
	errs := make([]error, opts.Workers)
	var wg sync.WaitGroup
	for i := range builders {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = runWorker(ctx, builders[i], opts, journal)
		}(i)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return err
	}
	logger.Info("demo complete",
		logpkg.Int("workers", opts.Workers),
		logpkg.Int("delivered", opts.Workers*opts.Workers*opts.Messages),
		logpkg.Dur("elapsed", time.Since(start)),
	)
	return nil
}

func runWorker(ctx context.Context, b *process.Builder, opts Options, journal *trace.Journal) error {
	p, err := b.Build()
	if err != nil {
		return err
	}
	pushes, pull, err := process.Allocate[payload](p, opts.Channel)
	if err != nil {
		return err
	}

	for k := range pushes {
		for s := 0; s < opts.Messages; s++ {
			m := payload{From: p.Index(), Seq: s}
			if err := pushes[k].Push(&m); err != nil {
				return fmt.Errorf("worker %d push to %d: %w", p.Index(), k, err)
			}
		}
	}

	// The exchange is done when every expected message arrived and every
	// peer's send has been accounted for in the counter inbox.
	want := opts.Workers * opts.Messages
	next := make([]int, opts.Workers)
	received := 0
	pushedSeen := 0
	for received < want || pushedSeen < want {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.DrainCounters()
		n, err := record(p, journal)
		if err != nil {
			return err
		}
		pushedSeen += n
		for {
			v, err := pull.Pull()
			if err != nil {
				return fmt.Errorf("worker %d pull: %w", p.Index(), err)
			}
			if v == nil {
				break
			}
			if v.Seq != next[v.From] {
				return fmt.Errorf("worker %d: sender %d out of order: seq %d, want %d", p.Index(), v.From, v.Seq, next[v.From])
			}
			next[v.From]++
			received++
		}
		if received < want || pushedSeen < want {
			p.AwaitEvents(100 * time.Millisecond)
		}
	}
	p.DrainCounters()
	_, err = record(p, journal)
	return err
}

// record pops whatever the worker accumulated in its event queue, persists
// it when tracing, and reports how many pushed events it saw.
func record(p *process.Process, journal *trace.Journal) (int, error) {
	var batch []transport.WorkerEvent
	pushed := 0
	for {
		ev, ok := p.Events().Pop()
		if !ok {
			break
		}
		if ev.Event.Kind == transport.EventPushed {
			pushed++
		}
		batch = append(batch, ev)
	}
	if journal == nil || len(batch) == 0 {
		return pushed, nil
	}
	_, err := journal.Append(batch...)
	return pushed, err
}
