package runtime

import (
	"context"
	"errors"

	cfgpkg "github.com/rzbill/loom/internal/config"
	pebblestore "github.com/rzbill/loom/internal/storage/pebble"
	"github.com/rzbill/loom/internal/trace"
	"github.com/rzbill/loom/internal/transport/process"
	logpkg "github.com/rzbill/loom/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	Config cfgpkg.Config
	Fsync  pebblestore.FsyncMode
	Logger logpkg.Logger
}

// Runtime wires trace storage, config, and cluster construction for a
// single process.
type Runtime struct {
	db     *pebblestore.DB
	config cfgpkg.Config
	logger logpkg.Logger
}

// Open validates the configuration and, when tracing is enabled, opens
// the underlying trace store.
func Open(opts Options) (*Runtime, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logpkg.Nop()
	}
	rt := &Runtime{config: opts.Config, logger: logger}
	if opts.Config.Trace.Enabled {
		dataDir := opts.Config.DataDir
		if dataDir == "" {
			dataDir = cfgpkg.DefaultDataDir()
		}
		db, err := pebblestore.Open(pebblestore.Options{DataDir: dataDir, Fsync: opts.Fsync})
		if err != nil {
			return nil, err
		}
		rt.db = db
		logger.Debug("trace store opened", logpkg.Str("dataDir", dataDir))
	}
	return rt, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// CheckHealth performs a simple health check of the trace store, when
// one is open.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.db == nil {
		return nil
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	return it.Close()
}

// NewCluster allocates a connected set of worker builders sharing one
// channel registry.
func (r *Runtime) NewCluster(workers int, opts ...process.Option) ([]*process.Builder, error) {
	opts = append([]process.Option{process.WithLogger(r.logger)}, opts...)
	return process.NewCluster(workers, opts...)
}

// OpenJournal opens the progress-trace journal for the configured
// session. Fails when tracing is disabled.
func (r *Runtime) OpenJournal() (*trace.Journal, error) {
	if r.db == nil {
		return nil, errors.New("runtime: tracing is not enabled")
	}
	return trace.OpenJournal(r.db, r.config.Trace.Session)
}

// DB exposes the underlying store for advanced operations (internal use
// only). Nil when tracing is disabled.
func (r *Runtime) DB() *pebblestore.DB { return r.db }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }

// Logger returns the runtime logger.
func (r *Runtime) Logger() logpkg.Logger { return r.logger }
