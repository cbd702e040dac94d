// Package filter compiles per-subscriber CEL expressions evaluated against
// live event envelopes.
package filter

import (
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/lazy-eggplant/vs.logger/pkg/vslog"
)

// Filter wraps a compiled CEL program. The zero value and filters compiled
// from an empty expression match everything.
type Filter struct {
	prog    cel.Program
	enabled bool
}

// Compile builds a Filter from a CEL expression over the envelope fields:
// type, severity, message, activity_uuid and parent_uuid as strings, seq_id
// and timestamp as ints. An empty expression yields a match-all filter.
func Compile(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Filter{}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("type", cel.StringType),
		cel.Variable("severity", cel.StringType),
		cel.Variable("message", cel.StringType),
		cel.Variable("activity_uuid", cel.StringType),
		cel.Variable("parent_uuid", cel.StringType),
		cel.Variable("seq_id", cel.IntType),
		cel.Variable("timestamp", cel.IntType),
	)
	if err != nil {
		return Filter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return Filter{}, iss.Err()
	}
	checked, iss := env.Check(ast)
	if iss != nil && iss.Err() != nil {
		return Filter{}, iss.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return Filter{}, err
	}
	return Filter{prog: prog, enabled: true}, nil
}

// Match evaluates the filter against one envelope. Evaluation errors count
// as a non-match.
func (f Filter) Match(env vslog.Envelope) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(map[string]any{
		"type":          env.Type,
		"severity":      env.Severity,
		"message":       env.Message,
		"activity_uuid": env.ActivityUUID,
		"parent_uuid":   env.ParentUUID,
		"seq_id":        int64(env.SeqID),
		"timestamp":     int64(env.Timestamp),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
