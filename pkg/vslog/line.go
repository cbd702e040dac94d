package vslog

import (
	"fmt"
	"strconv"
	"strings"
)

// Durable line format, one event per line:
//
//	[KIND], {SEVERITY}, Activity: <a> Seq: <s> Parent: <p> -- <message>
//
// Field order and presence are fixed; downstream tooling parses these lines.
// The message is escaped so that it cannot span lines.

var lineEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\n", `\n`,
	"\r", `\r`,
)

// FormatLine renders an Event as one durable log line, newline-terminated.
func FormatLine(ev Event) string {
	return fmt.Sprintf("[%s], {%s}, Activity: %d Seq: %d Parent: %d -- %s\n",
		ev.Kind, ev.Severity, ev.ActivityID, ev.SeqID, ev.ParentID, lineEscaper.Replace(ev.Message))
}

// ParseLine parses one durable log line (with or without the trailing
// newline) back into an Event. Timestamps are not persisted on the line, so
// the returned Event has Timestamp zero.
func ParseLine(line string) (Event, error) {
	line = strings.TrimSuffix(line, "\n")
	if !strings.HasPrefix(line, "[") {
		return Event{}, fmt.Errorf("vslog: malformed line: missing kind")
	}
	kindStr, rest, ok := strings.Cut(line[1:], "], {")
	if !ok {
		return Event{}, fmt.Errorf("vslog: malformed line: missing severity")
	}
	kind, err := ParseKind(kindStr)
	if err != nil {
		return Event{}, err
	}
	sevStr, rest, ok := strings.Cut(rest, "}, Activity: ")
	if !ok {
		return Event{}, fmt.Errorf("vslog: malformed line: missing activity")
	}
	sev, err := ParseSeverity(sevStr)
	if err != nil {
		return Event{}, err
	}
	activityStr, rest, ok := strings.Cut(rest, " Seq: ")
	if !ok {
		return Event{}, fmt.Errorf("vslog: malformed line: missing seq")
	}
	seqStr, rest, ok := strings.Cut(rest, " Parent: ")
	if !ok {
		return Event{}, fmt.Errorf("vslog: malformed line: missing parent")
	}
	parentStr, msg, ok := strings.Cut(rest, " -- ")
	if !ok {
		return Event{}, fmt.Errorf("vslog: malformed line: missing message")
	}
	activity, err := strconv.ParseUint(activityStr, 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("vslog: malformed activity id: %w", err)
	}
	seq, err := strconv.ParseUint(seqStr, 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("vslog: malformed seq id: %w", err)
	}
	parent, err := strconv.ParseUint(parentStr, 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("vslog: malformed parent id: %w", err)
	}
	return Event{
		Kind:       kind,
		Severity:   sev,
		ActivityID: activity,
		SeqID:      seq,
		ParentID:   parent,
		Message:    unescapeLine(msg),
	}, nil
}

func unescapeLine(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
