package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	democmd "github.com/rzbill/loom/internal/cmd/demo"
	cfgpkg "github.com/rzbill/loom/internal/config"
	pebblestore "github.com/rzbill/loom/internal/storage/pebble"
	"github.com/rzbill/loom/internal/trace"
	logpkg "github.com/rzbill/loom/pkg/log"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "loom",
		Short: "Loom transport CLI",
		Long:  "Loom is the intra-process transport layer of a parallel dataflow runtime. This CLI exercises worker clusters and inspects recorded progress traces.",
	}

	rootCmd.AddCommand(newDemoCommand())
	rootCmd.AddCommand(newTraceCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level, format string) logpkg.Logger {
	lvl, err := logpkg.ParseLevel(level)
	if err != nil {
		lvl = logpkg.InfoLevel
	}
	fm, err := logpkg.ParseFormat(format)
	if err != nil {
		fm = logpkg.FormatText
	}
	return logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormat(fm), logpkg.WithOutput(os.Stderr))
}

func loadConfig(path string) (cfgpkg.Config, error) {
	cfg, err := cfgpkg.Load(path)
	if err != nil {
		return cfgpkg.Config{}, err
	}
	cfgpkg.FromEnv(&cfg)
	return cfg, nil
}

func fsyncMode(name string) (pebblestore.FsyncMode, error) {
	switch name {
	case "always":
		return pebblestore.FsyncModeAlways, nil
	case "interval":
		return pebblestore.FsyncModeInterval, nil
	case "never":
		return pebblestore.FsyncModeNever, nil
	}
	return pebblestore.FsyncModeUnspecified, fmt.Errorf("invalid --fsync; use always|interval|never")
}

func newDemoCommand() *cobra.Command {
	demoCmd := &cobra.Command{Use: "demo", Short: "Demo pipelines"}
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run an all-to-all exchange across a worker cluster",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			workers, _ := cmd.Flags().GetInt("workers")
			messages, _ := cmd.Flags().GetInt("messages")
			channel, _ := cmd.Flags().GetUint64("channel")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			traceOn, _ := cmd.Flags().GetBool("trace")
			session, _ := cmd.Flags().GetString("session")
			fsyncName, _ := cmd.Flags().GetString("fsync")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Workers = workers
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if traceOn {
				cfg.Trace.Enabled = true
			}
			if session != "" {
				cfg.Trace.Session = session
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if logFormat != "" {
				cfg.LogFormat = logFormat
			}
			mode, err := fsyncMode(fsyncName)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return democmd.Run(ctx, democmd.Options{
				Workers:  cfg.Workers,
				Messages: messages,
				Channel:  channel,
				Fsync:    mode,
				Config:   cfg,
				Logger:   newLogger(cfg.LogLevel, cfg.LogFormat),
			})
		},
	}
	runCmd.Flags().String("config", "", "Path to JSON config file")
	runCmd.Flags().Int("workers", 0, "Worker count (default from config)")
	runCmd.Flags().Int("messages", 100, "Messages each worker sends to each peer")
	runCmd.Flags().Uint64("channel", 1, "Channel id for the exchange")
	runCmd.Flags().String("data-dir", "", "Trace data directory (default OS-specific)")
	runCmd.Flags().Bool("trace", false, "Record progress events to the trace journal")
	runCmd.Flags().String("session", "", "Trace session name")
	runCmd.Flags().String("fsync", "never", "Fsync mode: always|interval|never")
	runCmd.Flags().String("log-level", os.Getenv("LOOM_LOG_LEVEL"), "Log level: debug|info|warn|error")
	runCmd.Flags().String("log-format", os.Getenv("LOOM_LOG_FORMAT"), "Log format: text|json")
	demoCmd.AddCommand(runCmd)
	return demoCmd
}

func newTraceCommand() *cobra.Command {
	traceCmd := &cobra.Command{Use: "trace", Short: "Trace journal operations"}

	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print recorded progress events for a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			session, _ := cmd.Flags().GetString("session")
			filterExpr, _ := cmd.Flags().GetString("filter")
			limit, _ := cmd.Flags().GetInt("limit")

			if dataDir == "" {
				dataDir = cfgpkg.DefaultDataDir()
			}
			db, err := pebblestore.Open(pebblestore.Options{DataDir: dataDir, Fsync: pebblestore.FsyncModeNever})
			if err != nil {
				return err
			}
			defer db.Close()

			j, err := trace.OpenJournal(db, session)
			if err != nil {
				return err
			}
			filter, err := trace.NewFilter(filterExpr)
			if err != nil {
				return fmt.Errorf("compile --filter: %w", err)
			}
			items, _ := j.Read(trace.ReadOptions{Limit: limit, Filter: filter})
			for _, e := range items {
				fmt.Printf("%d\tworker=%d channel=%d %s count=%d ts_ms=%d\n",
					e.Seq, e.Worker, e.Event.Channel, e.Event.Kind, e.Event.Count, e.TsMs)
			}
			return nil
		},
	}
	dumpCmd.Flags().String("data-dir", os.Getenv("LOOM_DATA_DIR"), "Trace data directory")
	dumpCmd.Flags().String("session", "default", "Trace session name")
	dumpCmd.Flags().String("filter", "", `CEL filter, e.g. 'worker == 1 && kind == "pushed"'`)
	dumpCmd.Flags().Int("limit", 0, "Maximum entries to print (0 = all)")
	traceCmd.AddCommand(dumpCmd)

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, _ := cmd.Flags().GetString("data-dir")
			if dataDir == "" {
				dataDir = cfgpkg.DefaultDataDir()
			}
			db, err := pebblestore.Open(pebblestore.Options{DataDir: dataDir, Fsync: pebblestore.FsyncModeNever})
			if err != nil {
				return err
			}
			defer db.Close()
			sessions, err := trace.ListSessions(db)
			if err != nil {
				return err
			}
			for _, s := range sessions {
				fmt.Println(s)
			}
			return nil
		},
	}
	sessionsCmd.Flags().String("data-dir", os.Getenv("LOOM_DATA_DIR"), "Trace data directory")
	traceCmd.AddCommand(sessionsCmd)

	return traceCmd
}
