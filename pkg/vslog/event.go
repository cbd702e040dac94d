package vslog

import "fmt"

// Kind classifies the operational outcome an event reports. It is not a
// filtering level: PANIC additionally signals an alert condition to live
// viewers.
type Kind int

// Event kinds
const (
	KindOK Kind = iota
	KindInfo
	KindWarning
	KindError
	KindPanic
)

// String returns the symbolic name used on both the durable line and the
// live envelope.
func (k Kind) String() string {
	switch k {
	case KindOK:
		return "OK"
	case KindInfo:
		return "INFO"
	case KindWarning:
		return "WARNING"
	case KindError:
		return "ERROR"
	case KindPanic:
		return "PANIC"
	default:
		return "UNKNOWN"
	}
}

// ParseKind converts a symbolic kind name back into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "OK":
		return KindOK, nil
	case "INFO":
		return KindInfo, nil
	case "WARNING":
		return KindWarning, nil
	case "ERROR":
		return KindError, nil
	case "PANIC":
		return KindPanic, nil
	default:
		return KindOK, fmt.Errorf("vslog: unknown kind %q", s)
	}
}

// Severity is an intensity axis orthogonal to Kind.
type Severity int

// Severities
const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMid
	SeverityHigh
)

// String returns the symbolic severity name.
func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "NONE"
	case SeverityLow:
		return "LOW"
	case SeverityMid:
		return "MID"
	case SeverityHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity converts a symbolic severity name back into a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "NONE":
		return SeverityNone, nil
	case "LOW":
		return SeverityLow, nil
	case "MID":
		return SeverityMid, nil
	case "HIGH":
		return SeverityHigh, nil
	default:
		return SeverityNone, fmt.Errorf("vslog: unknown severity %q", s)
	}
}

// Event is one admitted, identity-assigned record. Identity (SeqID and
// Timestamp) is assigned by the Recorder at admission time; producers never
// supply it.
type Event struct {
	Kind      Kind
	Severity  Severity
	Timestamp uint64 // microseconds, monotonic within the recorder's lifetime
	// ActivityID groups related events; 0 means ungrouped.
	ActivityID uint64
	// ParentID links to a causally preceding activity; 0 means none.
	ParentID uint64
	// SeqID is the 1-based, gap-free total-order key for this recorder.
	SeqID   uint64
	Message string
}
