// Package runtime wires config, trace storage, and the worker cluster
// into a single Loom instance. It exposes Open/Close, a basic health
// check, and helpers to build connected worker allocators and open the
// progress-trace journal.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{Config: cfg})
//	defer rt.Close()
//	builders, _ := rt.NewCluster(cfg.Workers)
//	// hand each builder to its worker goroutine; each calls Build()
package runtime
