package demo

import (
	"context"
	"testing"

	cfgpkg "github.com/rzbill/loom/internal/config"
	pebblestore "github.com/rzbill/loom/internal/storage/pebble"
	"github.com/rzbill/loom/internal/trace"
)

func TestRunCompletesExchange(t *testing.T) {
	cfg := cfgpkg.Default()
	err := Run(context.Background(), Options{
		Workers:  3,
		Messages: 20,
		Channel:  1,
		Config:   cfg,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunRecordsTrace(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Trace.Enabled = true
	cfg.Trace.Session = "demo-test"
	cfg.DataDir = t.TempDir()

	err := Run(context.Background(), Options{
		Workers:  2,
		Messages: 5,
		Channel:  7,
		Fsync:    pebblestore.FsyncModeNever,
		Config:   cfg,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	db, err := pebblestore.Open(pebblestore.Options{DataDir: cfg.DataDir, Fsync: pebblestore.FsyncModeNever})
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	j, err := trace.OpenJournal(db, "demo-test")
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	items, _ := j.Read(trace.ReadOptions{})
	// 2 workers x 2 destinations x 5 messages, counted on both ends.
	if len(items) != 40 {
		t.Fatalf("recorded %d events, want 40", len(items))
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := cfgpkg.Default()
	err := Run(ctx, Options{Workers: 2, Messages: 1, Channel: 1, Config: cfg})
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
}
