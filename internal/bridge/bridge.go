package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	logpkg "github.com/lazy-eggplant/vs.logger/pkg/log"
	"github.com/lazy-eggplant/vs.logger/pkg/vslog"
)

// readWindow is how long a single blocking read waits before re-checking the
// shutdown signal.
const readWindow = 250 * time.Millisecond

// receiveBackoff is the pause after a transient receive error.
const receiveBackoff = 10 * time.Millisecond

// ArchiveSink receives every envelope the bridge pulled off the publish
// channel, before broadcast. Failures are contained by the bridge.
type ArchiveSink interface {
	Append(ctx context.Context, env vslog.Envelope, raw []byte) error
}

// Bridge pulls serialized events from the publish channel's unixgram socket
// and replicates each one to every registered subscriber. It runs until the
// context it was started with is cancelled; receive errors are transient and
// never terminate the loop.
type Bridge struct {
	path     string
	conn     *net.UnixConn
	registry *Registry
	archive  ArchiveSink // optional
	logger   logpkg.Logger
}

// New binds the unixgram socket at path and returns a stopped bridge. A
// stale socket file from a previous run is replaced.
func New(path string, registry *Registry, logger logpkg.Logger) (*Bridge, error) {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("bridge: remove stale socket: %w", err)
	}
	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: path, Net: "unixgram"})
	if err != nil {
		return nil, fmt.Errorf("bridge: bind %s: %w", path, err)
	}
	return &Bridge{
		path:     path,
		conn:     conn,
		registry: registry,
		logger:   logger.With(logpkg.Component("bridge")),
	}, nil
}

// Registry returns the subscriber registry owned by this bridge.
func (b *Bridge) Registry() *Registry { return b.registry }

// SetArchive attaches an optional archive sink. Must be called before Run.
func (b *Bridge) SetArchive(a ArchiveSink) { b.archive = a }

// Run executes the receive-and-broadcast loop until ctx is done. An
// in-flight broadcast completes before the loop exits.
func (b *Bridge) Run(ctx context.Context) error {
	defer b.cleanup()
	b.logger.Info("listening", logpkg.Str("socket", b.path))

	buf := make([]byte, vslog.MaxDatagramBytes)
	for {
		if ctx.Err() != nil {
			return nil
		}
		_ = b.conn.SetReadDeadline(time.Now().Add(readWindow))
		n, err := b.conn.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			b.logger.Warn("receive failed", logpkg.Err(err))
			time.Sleep(receiveBackoff)
			continue
		}
		if n == 0 {
			continue
		}
		raw := make([]byte, n)
		copy(raw, buf[:n])
		env, err := vslog.DecodeEnvelope(raw)
		if err != nil {
			b.logger.Warn("dropping malformed datagram", logpkg.Int("bytes", n), logpkg.Err(err))
			continue
		}
		if b.archive != nil {
			if err := b.archive.Append(ctx, env, raw); err != nil {
				b.logger.Error("archive append failed", logpkg.Uint64("seq", env.SeqID), logpkg.Err(err))
			}
		}
		b.broadcast(env, raw)
	}
}

// broadcast replicates one envelope to the registry's current snapshot. A
// failed subscriber is unregistered and closed; the rest of the broadcast
// proceeds.
func (b *Bridge) broadcast(env vslog.Envelope, raw []byte) {
	for _, sub := range b.registry.snapshot() {
		if err := sub.Send(env, raw); err != nil {
			id := b.registry.id(sub)
			b.registry.Unregister(sub)
			_ = sub.Close()
			b.logger.Info("dropping subscriber",
				logpkg.Str("subscriber", id),
				logpkg.Uint64("seq", env.SeqID),
				logpkg.Err(err))
		}
	}
}

func (b *Bridge) cleanup() {
	_ = b.conn.Close()
	_ = os.Remove(b.path)
	for _, sub := range b.registry.snapshot() {
		b.registry.Unregister(sub)
		_ = sub.Close()
	}
	b.logger.Info("stopped")
}
