package archive

import (
	"context"
	"errors"
	"testing"

	pebblestore "github.com/lazy-eggplant/vs.logger/internal/storage/pebble"
	"github.com/lazy-eggplant/vs.logger/pkg/vslog"
)

func newTestStore(t *testing.T) (*Store, *pebblestore.DB, string) {
	t.Helper()
	dir := t.TempDir()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	s, err := Open(db)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s, db, dir
}

func appendEvent(t *testing.T, s *Store, seq uint64, msg string) vslog.Envelope {
	t.Helper()
	ev := vslog.Event{Kind: vslog.KindInfo, Severity: vslog.SeverityLow, SeqID: seq, Message: msg}
	raw, err := vslog.EncodeEnvelope(ev)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	env := ev.Envelope()
	if err := s.Append(context.Background(), env, raw); err != nil {
		t.Fatalf("append seq %d: %v", seq, err)
	}
	return env
}

func TestAppendReadForward(t *testing.T) {
	s, _, _ := newTestStore(t)
	for i := uint64(1); i <= 5; i++ {
		appendEvent(t, s, i, "msg")
	}
	items, _, err := s.Read(ReadOptions{Limit: 10})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("want 5 items, got %d", len(items))
	}
	for i, it := range items {
		if it.Seq != uint64(i+1) {
			t.Fatalf("item %d has seq %d", i, it.Seq)
		}
	}
	if s.LastSeq() != 5 {
		t.Fatalf("lastSeq = %d", s.LastSeq())
	}
}

func TestReadPagination(t *testing.T) {
	s, _, _ := newTestStore(t)
	for i := uint64(1); i <= 6; i++ {
		appendEvent(t, s, i, "msg")
	}
	items, next, err := s.Read(ReadOptions{Limit: 4})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(items) != 4 || next.Seq() != 5 {
		t.Fatalf("page 1: %d items, next %d", len(items), next.Seq())
	}
	items, next, err = s.Read(ReadOptions{Start: next, Limit: 4})
	if err != nil {
		t.Fatalf("read page 2: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("page 2: %d items", len(items))
	}
	if items[0].Seq != 5 || items[1].Seq != 6 {
		t.Fatalf("page 2 seqs: %d, %d", items[0].Seq, items[1].Seq)
	}
	if next != (Token{}) {
		t.Fatalf("expected exhausted token, got seq %d", next.Seq())
	}
}

func TestReadReverse(t *testing.T) {
	s, _, _ := newTestStore(t)
	for i := uint64(1); i <= 3; i++ {
		appendEvent(t, s, i, "msg")
	}
	items, _, err := s.Read(ReadOptions{Reverse: true, Limit: 2})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(items) != 2 || items[0].Seq != 3 || items[1].Seq != 2 {
		t.Fatalf("reverse read wrong: %+v", items)
	}
}

func TestLastSeqSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	s, err := Open(db)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	appendEvent(t, s, 9, "before restart")
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db2, err := pebblestore.Open(pebblestore.Options{DataDir: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = db2.Close() })
	s2, err := Open(db2)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	if s2.LastSeq() != 9 {
		t.Fatalf("lastSeq after reopen = %d", s2.LastSeq())
	}
	env, err := s2.Get(9)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if env.Message != "before restart" {
		t.Fatalf("message = %q", env.Message)
	}
}

func TestDuplicateAppendIdempotent(t *testing.T) {
	s, _, _ := newTestStore(t)
	appendEvent(t, s, 1, "first copy")
	appendEvent(t, s, 1, "second copy")
	items, _, err := s.Read(ReadOptions{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("duplicate datagram produced %d entries", len(items))
	}
}

func TestGetMissing(t *testing.T) {
	s, _, _ := newTestStore(t)
	if _, err := s.Get(404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestCorruptRecordSkipped(t *testing.T) {
	s, db, _ := newTestStore(t)
	appendEvent(t, s, 1, "good")
	// Damage the stored record directly.
	if err := db.Set(keyEntry(2), []byte("garbage")); err != nil {
		t.Fatalf("set: %v", err)
	}
	appendEvent(t, s, 3, "also good")
	items, _, err := s.Read(ReadOptions{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(items) != 2 || items[0].Seq != 1 || items[1].Seq != 3 {
		t.Fatalf("corrupt record not skipped: %+v", items)
	}
}
