package archive

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"

	"github.com/cockroachdb/pebble"

	pebblestore "github.com/lazy-eggplant/vs.logger/internal/storage/pebble"
	"github.com/lazy-eggplant/vs.logger/pkg/vslog"
)

// Keyspace (lexicographically sortable):
//   - evt/m           (meta: highest seq seen)
//   - evt/e/{seq_be8} (entries)
var (
	keyMeta     = []byte("evt/m")
	entryPrefix = []byte("evt/e/")
)

// ErrNotFound is returned when a requested event is absent.
var ErrNotFound = errors.New("archive: event not found")

func keyEntry(seq uint64) []byte {
	k := make([]byte, 0, len(entryPrefix)+8)
	k = append(k, entryPrefix...)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seq)
	return append(k, b[:]...)
}

// Token encodes a read position as a sequence id (8 bytes big-endian).
type Token [8]byte

// TokenFromSeq builds a Token pointing at seq.
func TokenFromSeq(seq uint64) Token {
	var t Token
	binary.BigEndian.PutUint64(t[:], seq)
	return t
}

// Seq returns the sequence id the token points at.
func (t Token) Seq() uint64 { return binary.BigEndian.Uint64(t[:]) }

// Store retains a copy of every envelope the bridge received, keyed by the
// envelope's own sequence id. Re-appending a sequence overwrites the same
// key, so duplicate datagrams are idempotent.
type Store struct {
	db *pebblestore.DB

	mu      sync.Mutex
	lastSeq uint64
}

// Open initializes a Store and loads the highest archived sequence.
func Open(db *pebblestore.DB) (*Store, error) {
	s := &Store{db: db}
	meta, err := db.Get(keyMeta)
	if err == nil && len(meta) >= 8 {
		s.lastSeq = binary.BigEndian.Uint64(meta[:8])
	} else if err != nil && !errors.Is(err, pebblestore.ErrNotFound) {
		return nil, err
	}
	return s, nil
}

// Append stores one envelope. Implements bridge.ArchiveSink.
func (s *Store) Append(_ context.Context, env vslog.Envelope, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(keyEntry(env.SeqID), encodeRecord(raw), nil); err != nil {
		return err
	}
	if env.SeqID > s.lastSeq {
		var meta [8]byte
		binary.BigEndian.PutUint64(meta[:], env.SeqID)
		if err := b.Set(keyMeta, meta[:], nil); err != nil {
			return err
		}
	}
	if err := s.db.CommitBatch(b); err != nil {
		return err
	}
	if env.SeqID > s.lastSeq {
		s.lastSeq = env.SeqID
	}
	return nil
}

// LastSeq returns the highest archived sequence id.
func (s *Store) LastSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeq
}

// ReadOptions controls a Read scan.
type ReadOptions struct {
	Start   Token // zero means from the first (or last, when Reverse) entry
	Limit   int   // 0 means no limit
	Reverse bool
}

// Item is one archived envelope.
type Item struct {
	Seq      uint64
	Envelope vslog.Envelope
}

// Read returns up to Limit items starting at Start (inclusive) and the token
// to resume from. Records failing their checksum are skipped.
func (s *Store) Read(opts ReadOptions) ([]Item, Token, error) {
	low := keyEntry(0)
	hi := keyEntry(^uint64(0))
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: append(hi, 0x00)})
	if err != nil {
		return nil, Token{}, err
	}
	defer iter.Close()

	items := make([]Item, 0, opts.Limit)
	var next Token

	startSeq := opts.Start.Seq()
	if opts.Reverse {
		if startSeq == 0 {
			iter.Last()
		} else if !iter.SeekLT(keyEntry(startSeq + 1)) {
			return items, next, nil
		}
	} else {
		if startSeq == 0 {
			iter.First()
		} else if !iter.SeekGE(keyEntry(startSeq)) {
			return items, next, nil
		}
	}

	for iter.Valid() && (opts.Limit == 0 || len(items) < opts.Limit) {
		seq := binary.BigEndian.Uint64(iter.Key()[len(entryPrefix):])
		if payload, ok := decodeRecord(iter.Value()); ok {
			if env, err := vslog.DecodeEnvelope(payload); err == nil {
				items = append(items, Item{Seq: seq, Envelope: env})
			}
		}
		if opts.Reverse {
			if !iter.Prev() {
				return items, next, nil
			}
		} else {
			if !iter.Next() {
				return items, next, nil
			}
		}
	}
	if iter.Valid() {
		copy(next[:], iter.Key()[len(entryPrefix):])
	}
	return items, next, nil
}

// Get returns a single archived envelope by sequence id.
func (s *Store) Get(seq uint64) (vslog.Envelope, error) {
	val, err := s.db.Get(keyEntry(seq))
	if err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return vslog.Envelope{}, ErrNotFound
		}
		return vslog.Envelope{}, err
	}
	payload, ok := decodeRecord(val)
	if !ok {
		return vslog.Envelope{}, ErrNotFound
	}
	return vslog.DecodeEnvelope(payload)
}
