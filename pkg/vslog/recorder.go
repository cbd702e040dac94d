package vslog

import (
	"sync"
	"time"

	logpkg "github.com/lazy-eggplant/vs.logger/pkg/log"
)

// Option configures a Recorder.
type Option func(*recorderOptions)

type recorderOptions struct {
	logFile string
	socket  string
	logger  logpkg.Logger
}

// WithLogFile enables the durable sink, appending one line per event to the
// file at path.
func WithLogFile(path string) Option {
	return func(o *recorderOptions) { o.logFile = path }
}

// WithSocketPath enables live publishing of event envelopes to the unixgram
// socket at path.
func WithSocketPath(path string) Option {
	return func(o *recorderOptions) { o.socket = path }
}

// WithLogger sets the diagnostic logger receiving contained failures. The
// default logs to the console.
func WithLogger(l logpkg.Logger) Option {
	return func(o *recorderOptions) { o.logger = l }
}

// Recorder assigns identity to submitted events and drives the durable sink
// and the publish channel. All downstream failures are contained: Record
// never fails the caller.
type Recorder struct {
	mu    sync.Mutex
	seq   uint64
	epoch time.Time // wall base; offsets from it come from the monotonic clock

	sink   *fileSink  // nil when durable persistence is disabled
	pub    *publisher // nil when live publishing is disabled
	logger logpkg.Logger
}

// New builds a Recorder. Durable persistence and live publishing are
// independently optional; a sink whose destination cannot be set up at
// construction is reported through the diagnostic logger and stays disabled
// for the recorder's lifetime.
func New(opts ...Option) *Recorder {
	var o recorderOptions
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	logger = logger.With(logpkg.Component("recorder"))

	r := &Recorder{epoch: time.Now(), logger: logger}
	if o.logFile != "" {
		sink, err := newFileSink(o.logFile)
		if err != nil {
			logger.Error("durable sink disabled", logpkg.Str("path", o.logFile), logpkg.Err(err))
		} else {
			r.sink = sink
		}
	}
	if o.socket != "" {
		r.pub = newPublisher(o.socket)
	}
	return r
}

// Record admits one ungrouped event.
func (r *Recorder) Record(kind Kind, sev Severity, msg string) {
	r.RecordActivity(kind, sev, 0, 0, msg)
}

// RecordActivity admits one event correlated to an activity. The single lock
// below is the sole source of total ordering: identity assignment and both
// sink writes happen under it so every consumer observes the same order.
func (r *Recorder) RecordActivity(kind Kind, sev Severity, activityID, parentID uint64, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	ev := Event{
		Kind:       kind,
		Severity:   sev,
		Timestamp:  r.now(),
		ActivityID: activityID,
		ParentID:   parentID,
		SeqID:      r.seq,
		Message:    msg,
	}

	if r.sink != nil {
		if err := r.sink.append(ev); err != nil {
			r.logger.Error("durable append failed", logpkg.Uint64("seq", ev.SeqID), logpkg.Err(err))
		}
	}
	if r.pub != nil {
		if err := r.pub.publish(ev); err != nil {
			r.logger.Debug("publish dropped", logpkg.Uint64("seq", ev.SeqID), logpkg.Err(err))
		}
	}
}

// now returns microseconds on a clock that is monotonic for the recorder's
// lifetime: a wall base captured at construction plus a monotonic offset.
func (r *Recorder) now() uint64 {
	return uint64(r.epoch.UnixMicro()) + uint64(time.Since(r.epoch).Microseconds())
}

// Close releases the sink handles. Record calls after Close are undefined.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first error
	if r.sink != nil {
		if err := r.sink.close(); err != nil {
			first = err
		}
		r.sink = nil
	}
	if r.pub != nil {
		if err := r.pub.close(); err != nil && first == nil {
			first = err
		}
		r.pub = nil
	}
	return first
}
