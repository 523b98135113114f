package trace

import (
	"encoding/binary"

	"github.com/rzbill/loom/internal/transport"
)

// Keyspace helpers for Pebble keys.
//
// Layout (byte-wise, lexicographically sortable):
// - trace/{session}/m
// - trace/{session}/e/{seq_be8}

var (
	tracePrefix = []byte("trace/")
	metaSuffix  = []byte("/m")
	entrySeg    = []byte("/e/")
)

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// KeyMeta builds the session metadata key.
func KeyMeta(session string) []byte {
	k := make([]byte, 0, len(session)+16)
	k = append(k, tracePrefix...)
	k = append(k, session...)
	k = append(k, metaSuffix...)
	return k
}

// KeyEntry builds the entry key with a big-endian sequence for ordering.
func KeyEntry(session string, seq uint64) []byte {
	k := make([]byte, 0, len(session)+24)
	k = append(k, tracePrefix...)
	k = append(k, session...)
	k = append(k, entrySeg...)
	k = appendBE8(k, seq)
	return k
}

const recordSize = 4 + 8 + 1 + 4 + 8

// EncodeRecord packs one progress event with its wall-clock timestamp.
func EncodeRecord(worker int, ev transport.Event, tsMs int64) []byte {
	b := make([]byte, recordSize)
	binary.BigEndian.PutUint32(b[0:4], uint32(worker))
	binary.BigEndian.PutUint64(b[4:12], ev.Channel)
	b[12] = byte(ev.Kind)
	binary.BigEndian.PutUint32(b[13:17], uint32(ev.Count))
	binary.BigEndian.PutUint64(b[17:25], uint64(tsMs))
	return b
}

// DecodeRecord unpacks an entry value. Reports false on malformed input.
func DecodeRecord(b []byte) (worker int, ev transport.Event, tsMs int64, ok bool) {
	if len(b) != recordSize {
		return 0, transport.Event{}, 0, false
	}
	worker = int(binary.BigEndian.Uint32(b[0:4]))
	ev.Channel = binary.BigEndian.Uint64(b[4:12])
	ev.Kind = transport.EventKind(b[12])
	ev.Count = int(binary.BigEndian.Uint32(b[13:17]))
	tsMs = int64(binary.BigEndian.Uint64(b[17:25]))
	return worker, ev, tsMs, true
}
