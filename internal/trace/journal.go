package trace

import (
	"encoding/binary"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
	pebblestore "github.com/rzbill/loom/internal/storage/pebble"
	"github.com/rzbill/loom/internal/transport"
)

// Journal provides append-only recording of progress events for one
// session.
type Journal struct {
	db      *pebblestore.DB
	session string

	mu      sync.Mutex
	lastSeq uint64
}

// NowMs returns current time in milliseconds since Unix epoch. Overridable
// in tests.
var NowMs = func() int64 { return time.Now().UnixMilli() }

// OpenJournal initializes a Journal and loads the last sequence from
// session metadata (if any), so appends continue an existing session.
func OpenJournal(db *pebblestore.DB, session string) (*Journal, error) {
	if session == "" || strings.ContainsRune(session, '/') {
		return nil, errors.New("trace: invalid session name")
	}
	j := &Journal{db: db, session: session}
	meta, err := db.Get(KeyMeta(session))
	if err == nil && len(meta) >= 8 {
		j.lastSeq = binary.BigEndian.Uint64(meta[:8])
	}
	return j, nil
}

// Session returns the session name.
func (j *Journal) Session() string { return j.session }

// Append records the provided events as a single atomic batch. Returns the
// assigned sequence numbers.
func (j *Journal) Append(events ...transport.WorkerEvent) ([]uint64, error) {
	if len(events) == 0 {
		return nil, nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	b := j.db.NewBatch()
	defer b.Close()

	now := NowMs()
	seqs := make([]uint64, len(events))
	for i, ev := range events {
		j.lastSeq++
		seq := j.lastSeq
		val := EncodeRecord(ev.Worker, ev.Event, now)
		if err := b.Set(KeyEntry(j.session, seq), val, nil); err != nil {
			return nil, err
		}
		seqs[i] = seq
	}

	var meta [8]byte
	binary.BigEndian.PutUint64(meta[:], j.lastSeq)
	if err := b.Set(KeyMeta(j.session), meta[:], nil); err != nil {
		return nil, err
	}
	if err := j.db.CommitBatch(b); err != nil {
		return nil, err
	}
	return seqs, nil
}

// Token encodes a resume position as seq (8 bytes big-endian).
type Token [8]byte

// TokenFromSeq builds a token addressing seq.
func TokenFromSeq(seq uint64) Token { var t Token; binary.BigEndian.PutUint64(t[:], seq); return t }

// Seq returns the sequence the token addresses.
func (t Token) Seq() uint64 { return binary.BigEndian.Uint64(t[:]) }

// ReadOptions controls a journal scan.
type ReadOptions struct {
	Start  Token  // if zero, begin from the first entry
	Limit  int    // 0 means no limit
	Filter Filter // zero value admits everything
}

// Entry is one recorded progress event.
type Entry struct {
	Seq    uint64
	Worker int
	Event  transport.Event
	TsMs   int64
}

// Read returns up to Limit entries starting at Start (inclusive), plus a
// token addressing the next unread entry. Filtered-out entries count
// against neither the limit nor the result.
func (j *Journal) Read(opts ReadOptions) ([]Entry, Token) {
	low := KeyEntry(j.session, 0)
	hi := KeyEntry(j.session, ^uint64(0))

	items := make([]Entry, 0, 16)
	var next Token

	iter, err := j.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: append(hi, 0x00)})
	if err != nil {
		return items, next
	}
	defer iter.Close()

	startSeq := opts.Start.Seq()
	if startSeq == 0 {
		if !iter.First() {
			return items, next
		}
	} else {
		if !iter.SeekGE(KeyEntry(j.session, startSeq)) {
			return items, next
		}
	}
	for iter.Valid() && (opts.Limit == 0 || len(items) < opts.Limit) {
		key := iter.Key()
		seq := binary.BigEndian.Uint64(key[len(key)-8:])
		if worker, ev, ts, ok := DecodeRecord(iter.Value()); ok {
			e := Entry{Seq: seq, Worker: worker, Event: ev, TsMs: ts}
			if opts.Filter.Eval(e) {
				items = append(items, e)
			}
		}
		if !iter.Next() {
			return items, next
		}
	}
	if iter.Valid() {
		key := iter.Key()
		copy(next[:], key[len(key)-8:])
	}
	return items, next
}

// ListSessions scans the journal keyspace and returns the distinct session
// names, in key order.
func ListSessions(db *pebblestore.DB) ([]string, error) {
	iter, err := db.NewIter(&pebble.IterOptions{
		LowerBound: tracePrefix,
		UpperBound: []byte("trace0"), // '0' is the byte after '/'
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []string
	last := ""
	for iter.First(); iter.Valid(); iter.Next() {
		rest := string(iter.Key()[len(tracePrefix):])
		name, _, ok := strings.Cut(rest, "/")
		if !ok || name == last {
			continue
		}
		last = name
		out = append(out, name)
	}
	return out, nil
}
