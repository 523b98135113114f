// Package log provides Loom's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// simple Field type for structured context. Internally it is backed by Go's
// standard library slog, so output format (text or JSON) and destination are
// configured once at construction and the rest of the codebase stays against
// the facade.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormat(log.FormatText),
//	    log.WithOutput(os.Stderr),
//	)
//	l = l.With(log.Component("cluster"), log.Int("workers", 4))
//	l.Info("cluster built", log.Int("channels", 2))
//
// Loggers are passed explicitly via dependency injection; there is no global
// default. Nop() returns a discard-all logger for tests and optional wiring.
package log
