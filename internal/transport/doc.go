// Package transport defines Loom's intra-process transport contracts.
//
// # Overview
//
// Upper layers see exactly two capabilities, uniform across all transport
// backends:
//   - Push: send a payload to one destination worker. Push(nil) is a flush
//     signal and carries no message.
//   - Pull: non-blocking receive of the next pending payload, or nil.
//
// The package also defines the progress-event types that decorated endpoints
// emit (see transport/counters), the error kinds shared by all backends, and
// the unbounded multi-producer single-consumer queue the intra-process
// backend is built on.
//
// Every error at this layer is fatal: there is no retry path, and callers
// are expected to terminate the affected worker. Layers above own retry and
// graceful degradation.
package transport
