package vslog

import (
	"encoding/json"
	"strconv"
	"unicode/utf8"
)

// MaxDatagramBytes bounds the serialized envelope sent over the publish
// channel. Receivers size their read buffers accordingly.
const MaxDatagramBytes = 8 << 10

// Envelope is the flat wire representation of an Event carried over the
// publish channel and delivered verbatim to live subscribers. Activity and
// parent identifiers travel as decimal strings; the viewer treats them as
// opaque.
type Envelope struct {
	Timestamp    uint64 `json:"timestamp"`
	Type         string `json:"type"`
	Severity     string `json:"severity"`
	ActivityUUID string `json:"activity_uuid"`
	SeqID        uint64 `json:"seq_id"`
	ParentUUID   string `json:"parent_uuid"`
	Message      string `json:"message"`
}

// Envelope converts an Event into its wire representation.
func (e Event) Envelope() Envelope {
	return Envelope{
		Timestamp:    e.Timestamp,
		Type:         e.Kind.String(),
		Severity:     e.Severity.String(),
		ActivityUUID: strconv.FormatUint(e.ActivityID, 10),
		SeqID:        e.SeqID,
		ParentUUID:   strconv.FormatUint(e.ParentID, 10),
		Message:      e.Message,
	}
}

// Event converts an Envelope back into an Event. Malformed symbolic names or
// identifiers are rejected.
func (env Envelope) Event() (Event, error) {
	kind, err := ParseKind(env.Type)
	if err != nil {
		return Event{}, err
	}
	sev, err := ParseSeverity(env.Severity)
	if err != nil {
		return Event{}, err
	}
	activity, err := strconv.ParseUint(env.ActivityUUID, 10, 64)
	if err != nil {
		return Event{}, err
	}
	parent, err := strconv.ParseUint(env.ParentUUID, 10, 64)
	if err != nil {
		return Event{}, err
	}
	return Event{
		Kind:       kind,
		Severity:   sev,
		Timestamp:  env.Timestamp,
		ActivityID: activity,
		ParentID:   parent,
		SeqID:      env.SeqID,
		Message:    env.Message,
	}, nil
}

// EncodeEnvelope serializes an Event for the publish channel. Message content
// is escaped by the JSON encoder, so no payload can break the envelope's
// structure or inject fields. Oversized messages are clipped so the datagram
// fits MaxDatagramBytes.
func EncodeEnvelope(ev Event) ([]byte, error) {
	env := ev.Envelope()
	for {
		b, err := json.Marshal(env)
		if err != nil {
			return nil, err
		}
		if len(b) <= MaxDatagramBytes {
			return b, nil
		}
		over := len(b) - MaxDatagramBytes
		if over >= len(env.Message) {
			env.Message = ""
			continue
		}
		env.Message = clipMessage(env.Message, len(env.Message)-over)
	}
}

// DecodeEnvelope parses one datagram payload.
func DecodeEnvelope(b []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

// clipMessage truncates s to at most n bytes without splitting a rune.
func clipMessage(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if n >= len(s) {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
