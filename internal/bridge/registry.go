package bridge

import (
	"sync"

	"github.com/google/uuid"

	"github.com/lazy-eggplant/vs.logger/pkg/vslog"
)

// Conn is one live subscriber connection. Send must be bounded: it either
// accepts the event immediately or fails, so one stalled subscriber cannot
// stall a broadcast. A Conn that fails a Send is considered dead.
type Conn interface {
	Send(env vslog.Envelope, raw []byte) error
	Close() error
}

// Registry is the concurrently-mutated set of live subscriber connections.
// Registration is idempotent: the same Conn registered twice holds a single
// membership and receives a single copy per broadcast.
type Registry struct {
	mu   sync.RWMutex
	subs map[Conn]string // conn -> diagnostic id
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{subs: make(map[Conn]string)}
}

// Register adds a subscriber and returns its diagnostic id. Re-registering
// an existing subscriber returns the id it already holds.
func (r *Registry) Register(c Conn) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.subs[c]; ok {
		return id
	}
	id := uuid.NewString()
	r.subs[c] = id
	return id
}

// Unregister removes a subscriber. Removing an absent subscriber is a no-op.
// It reports whether the subscriber was present.
func (r *Registry) Unregister(c Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[c]; !ok {
		return false
	}
	delete(r.subs, c)
	return true
}

// Len returns the current number of subscribers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// snapshot returns a stable view for one broadcast iteration. Mutations that
// race with the snapshot apply to the next broadcast.
func (r *Registry) snapshot() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Conn, 0, len(r.subs))
	for c := range r.subs {
		out = append(out, c)
	}
	return out
}

// id returns the diagnostic id for a subscriber, if registered.
func (r *Registry) id(c Conn) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.subs[c]
}
