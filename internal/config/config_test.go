package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Workers < 1 {
		t.Fatalf("default workers = %d", cfg.Workers)
	}
}

func TestLoadJSONOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loom.json")
	body := `{"workers": 3, "trace": {"enabled": true, "session": "bench"}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Workers != 3 {
		t.Fatalf("workers = %d, want 3", cfg.Workers)
	}
	if !cfg.Trace.Enabled || cfg.Trace.Session != "bench" {
		t.Fatalf("trace = %+v", cfg.Trace)
	}
	// Untouched keys keep defaults.
	if cfg.LogLevel != "info" {
		t.Fatalf("logLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestFromEnvOverlay(t *testing.T) {
	t.Setenv("LOOM_WORKERS", "8")
	t.Setenv("LOOM_TRACE", "true")
	t.Setenv("LOOM_TRACE_SESSION", "run-1")
	t.Setenv("LOOM_LOG_LEVEL", "debug")

	cfg := Default()
	FromEnv(&cfg)
	if cfg.Workers != 8 {
		t.Fatalf("workers = %d, want 8", cfg.Workers)
	}
	if !cfg.Trace.Enabled || cfg.Trace.Session != "run-1" {
		t.Fatalf("trace = %+v", cfg.Trace)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("logLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestValidateRejectsBadWorkerCount(t *testing.T) {
	cfg := Default()
	cfg.Workers = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestDefaultDataDirNonEmpty(t *testing.T) {
	if DefaultDataDir() == "" {
		t.Fatalf("empty default data dir")
	}
}
