package runtime

import (
	"context"
	"testing"

	cfgpkg "github.com/rzbill/loom/internal/config"
	pebblestore "github.com/rzbill/loom/internal/storage/pebble"
)

func TestOpenWithoutTrace(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Workers = 2
	rt, err := Open(Options{Config: cfg})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	if rt.DB() != nil {
		t.Fatalf("trace store opened despite tracing disabled")
	}
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if _, err := rt.OpenJournal(); err == nil {
		t.Fatalf("expected journal open to fail without tracing")
	}
}

func TestOpenWithTrace(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Workers = 2
	cfg.Trace.Enabled = true
	cfg.Trace.Session = "t"
	cfg.DataDir = t.TempDir()
	rt, err := Open(Options{Config: cfg, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	j, err := rt.OpenJournal()
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	if j.Session() != "t" {
		t.Fatalf("session = %q, want t", j.Session())
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Workers = 0
	if _, err := Open(Options{Config: cfg}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestNewClusterWiresWorkers(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Workers = 3
	rt, err := Open(Options{Config: cfg})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	builders, err := rt.NewCluster(cfg.Workers)
	if err != nil {
		t.Fatalf("new cluster: %v", err)
	}
	if len(builders) != 3 {
		t.Fatalf("got %d builders, want 3", len(builders))
	}
}
