// Package pebblestore wraps a Pebble database with Loom's durability
// policy and the small helper surface the trace journal needs.
//
// # Overview
//
// The wrapper pins down one decision per database: when the WAL is synced
// (FsyncMode). Everything else is a thin pass-through — point reads copy
// values out, writes go through batches so single-key updates and
// multi-key appends share one commit path, and iteration hands back raw
// Pebble iterators for range scans over the journal keyspace.
package pebblestore
