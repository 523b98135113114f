// Package trace implements Loom's persistent progress-event journal.
//
// # Overview
//
// A Journal records the progress events a worker drains from its counter
// inbox, keyed by recording session so runs can be compared after the
// fact. Entries are persisted in Pebble with lexicographically ordered
// keys:
//   - trace/{session}/m           (session metadata: lastSeq)
//   - trace/{session}/e/{seq_be8} (entries)
//
// Entries are fixed-width binary: worker(4) | channel(8) | kind(1) |
// count(4) | ts_ms(8).
//
// API surface (internal)
//
//	j, _ := OpenJournal(db, "run-2024")
//	seqs, _ := j.Append(events...)
//	items, next := j.Read(ReadOptions{Limit: 100})
//	_ = next // resume position
//
// Read supports an optional CEL filter (see NewFilter) over the entry
// fields, mirroring the expression surface of the trace dump command.
package trace
