package vslog

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEnvelopeRoundTripAdversarial(t *testing.T) {
	messages := []string{
		"plain",
		`"},"type":"PANIC","seq_id":999,"x":{"y":"`,
		"control \x01\x02 chars \n\t\r",
		`backslashes \\ and quotes ""`,
		"unicode ⛔⛓️",
	}
	for _, msg := range messages {
		ev := Event{
			Kind:       KindPanic,
			Severity:   SeverityHigh,
			Timestamp:  123456789,
			ActivityID: 42,
			ParentID:   7,
			SeqID:      3,
			Message:    msg,
		}
		b, err := EncodeEnvelope(ev)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		// No adversarial message may inject top-level fields.
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(b, &raw); err != nil {
			t.Fatalf("envelope not valid JSON: %v", err)
		}
		if len(raw) != 7 {
			t.Fatalf("message %q injected fields: %d top-level keys", msg, len(raw))
		}
		env, err := DecodeEnvelope(b)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		back, err := env.Event()
		if err != nil {
			t.Fatalf("env.Event: %v", err)
		}
		if back != ev {
			t.Fatalf("round trip: got %+v, want %+v", back, ev)
		}
	}
}

func TestEnvelopeFieldNames(t *testing.T) {
	ev := Event{Kind: KindWarning, Severity: SeverityMid, ActivityID: 42, SeqID: 1}
	b, err := EncodeEnvelope(ev)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	s := string(b)
	for _, frag := range []string{`"type":"WARNING"`, `"severity":"MID"`, `"activity_uuid":"42"`, `"seq_id":1`, `"parent_uuid":"0"`} {
		if !strings.Contains(s, frag) {
			t.Fatalf("envelope %s missing %s", s, frag)
		}
	}
}

func TestEncodeEnvelopeBounded(t *testing.T) {
	ev := Event{Kind: KindInfo, Severity: SeverityLow, Message: strings.Repeat("long ⛔ message ", 4096)}
	b, err := EncodeEnvelope(ev)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(b) > MaxDatagramBytes {
		t.Fatalf("datagram %d bytes exceeds bound %d", len(b), MaxDatagramBytes)
	}
	env, err := DecodeEnvelope(b)
	if err != nil {
		t.Fatalf("decode clipped: %v", err)
	}
	if env.Message == "" {
		t.Fatalf("message clipped to nothing")
	}
	if !strings.HasPrefix(ev.Message, env.Message) {
		t.Fatalf("clipped message is not a prefix of the original")
	}
}
