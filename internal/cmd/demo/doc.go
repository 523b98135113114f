// Package demo exposes a shared Run entrypoint used by the CLI to drive
// an all-to-all exchange across a freshly built worker cluster: every
// worker allocates the same channel, sends a message sequence to every
// peer, and drains its progress counters until delivery completes,
// optionally recording the drained events into the trace journal.
//
// Example:
//
//	opts := demo.Options{Workers: 4, Messages: 100, Channel: 1, Config: config.Default()}
//	_ = demo.Run(context.Background(), opts)
package demo
