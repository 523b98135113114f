package config

import (
	"os"
	"strconv"
)

// FromEnv overlays LOOM_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("LOOM_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("LOOM_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("LOOM_TRACE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Trace.Enabled = b
		}
	}
	if v := os.Getenv("LOOM_TRACE_SESSION"); v != "" {
		cfg.Trace.Session = v
	}
	if v := os.Getenv("LOOM_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LOOM_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}
