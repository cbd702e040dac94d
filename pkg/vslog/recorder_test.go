package vslog

import (
	"bufio"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	logpkg "github.com/lazy-eggplant/vs.logger/pkg/log"
)

func newTestRecorder(t *testing.T, opts ...Option) *Recorder {
	t.Helper()
	opts = append(opts, WithLogger(logpkg.NewNopLogger()))
	r := New(opts...)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func listenDatagrams(t *testing.T, path string) *net.UnixConn {
	t.Helper()
	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: path, Net: "unixgram"})
	if err != nil {
		t.Fatalf("listen unixgram: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFileEvents(t *testing.T, path string) []Event {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log file: %v", err)
	}
	defer f.Close()
	var events []Event
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		ev, err := ParseLine(sc.Text())
		if err != nil {
			t.Fatalf("parse line %q: %v", sc.Text(), err)
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return events
}

func TestConcurrentRecordSequenceComplete(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "a.log")
	r := newTestRecorder(t, WithLogFile(logFile))

	const producers = 2
	const perProducer = 50
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				r.Record(KindInfo, SeverityLow, "concurrent message")
			}
		}()
	}
	wg.Wait()

	events := readFileEvents(t, logFile)
	if len(events) != producers*perProducer {
		t.Fatalf("want %d lines, got %d", producers*perProducer, len(events))
	}
	seen := make(map[uint64]bool, len(events))
	for i, ev := range events {
		if ev.SeqID != uint64(i+1) {
			t.Fatalf("line %d has seq %d; sink order must match ascending seq", i, ev.SeqID)
		}
		if seen[ev.SeqID] {
			t.Fatalf("duplicate seq %d", ev.SeqID)
		}
		seen[ev.SeqID] = true
	}
}

func TestRecordEndToEndBothSinks(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "a.log")
	sock := filepath.Join(dir, "a.sock")
	listener := listenDatagrams(t, sock)

	r := newTestRecorder(t, WithLogFile(logFile), WithSocketPath(sock))
	r.RecordActivity(KindWarning, SeverityMid, 42, 0, "disk at 91%")

	events := readFileEvents(t, logFile)
	if len(events) != 1 {
		t.Fatalf("want 1 durable line, got %d", len(events))
	}
	ev := events[0]
	if ev.Kind != KindWarning || ev.Severity != SeverityMid || ev.ActivityID != 42 || ev.SeqID != 1 {
		t.Fatalf("durable line fields wrong: %+v", ev)
	}

	buf := make([]byte, MaxDatagramBytes)
	_ = listener.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := listener.Read(buf)
	if err != nil {
		t.Fatalf("read datagram: %v", err)
	}
	env, err := DecodeEnvelope(buf[:n])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Type != "WARNING" || env.Severity != "MID" || env.ActivityUUID != "42" || env.SeqID != 1 {
		t.Fatalf("envelope fields wrong: %+v", env)
	}
	if env.Message != "disk at 91%" {
		t.Fatalf("message = %q", env.Message)
	}
}

func TestRecordTimestampsNonDecreasing(t *testing.T) {
	dir := t.TempDir()
	sock := filepath.Join(dir, "a.sock")
	listener := listenDatagrams(t, sock)
	r := newTestRecorder(t, WithSocketPath(sock))

	const count = 20
	for i := 0; i < count; i++ {
		r.Record(KindOK, SeverityNone, "tick")
	}
	var prev uint64
	buf := make([]byte, MaxDatagramBytes)
	for i := 0; i < count; i++ {
		_ = listener.SetReadDeadline(time.Now().Add(2 * time.Second))
		n, err := listener.Read(buf)
		if err != nil {
			t.Fatalf("read datagram %d: %v", i, err)
		}
		env, err := DecodeEnvelope(buf[:n])
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if env.Timestamp < prev {
			t.Fatalf("timestamp regressed: %d after %d", env.Timestamp, prev)
		}
		prev = env.Timestamp
	}
}

func TestRecordWithNoSinksIsNoop(t *testing.T) {
	r := newTestRecorder(t)
	// Must not panic or touch the filesystem.
	r.Record(KindError, SeverityHigh, "nowhere to go")
	r.RecordActivity(KindPanic, SeverityHigh, 1, 2, "still nowhere")
}

func TestRecordSurvivesAbsentSubscriber(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "a.log")
	sock := filepath.Join(dir, "missing.sock") // nobody listens
	r := newTestRecorder(t, WithLogFile(logFile), WithSocketPath(sock))

	for i := 0; i < 10; i++ {
		r.Record(KindInfo, SeverityNone, "published into the void")
	}
	events := readFileEvents(t, logFile)
	if len(events) != 10 {
		t.Fatalf("durable path affected by publish failures: %d lines", len(events))
	}
}

func TestRecorderDisabledSinkOnBadPath(t *testing.T) {
	dir := t.TempDir()
	r := newTestRecorder(t, WithLogFile(filepath.Join(dir, "no", "such", "dir", "a.log")))
	// Sink construction failed; recording must still be safe.
	r.Record(KindInfo, SeverityNone, "dropped durably")
}
