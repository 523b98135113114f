package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// Workers is the number of worker threads in the cluster.
	Workers int `json:"workers"`
	// DataDir is where the trace journal lives. Empty selects the
	// OS-specific default (see DefaultDataDir).
	DataDir string `json:"dataDir"`
	// Trace enables the persistent progress-event journal.
	Trace TraceConfig `json:"trace"`
	// LogLevel is debug|info|warn|error.
	LogLevel string `json:"logLevel"`
	// LogFormat is text|json.
	LogFormat string `json:"logFormat"`
}

// TraceConfig controls progress-event recording.
type TraceConfig struct {
	Enabled bool   `json:"enabled"`
	Session string `json:"session"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Workers:   runtime.NumCPU(),
		LogLevel:  "info",
		LogFormat: "text",
		Trace: TraceConfig{
			Session: "default",
		},
	}
}

// Load reads configuration from a JSON file over the defaults. If path is
// empty, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the runtime cannot honor.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be >= 1, got %d", c.Workers)
	}
	if c.Trace.Enabled && c.Trace.Session == "" {
		return fmt.Errorf("config: trace enabled without a session name")
	}
	return nil
}
