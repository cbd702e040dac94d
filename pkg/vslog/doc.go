// Package vslog is the producer-facing core of vs.logger: it assigns each
// event a globally ordered identity and drives the two sinks.
//
// # Overview
//
// A Recorder serializes concurrent producers behind one lock. Under that
// lock it captures a monotonic microsecond timestamp, increments the 1-based
// gap-free sequence counter, appends a line to the durable sink, and fires
// the event's JSON envelope at the publish channel. Durability precedes but
// never depends on live notification: both sinks are optional, lossy
// publishing never blocks producers, and no failure propagates to the
// caller.
//
// Quick start
//
//	r := vslog.New(
//	    vslog.WithLogFile("/tmp/app.log"),
//	    vslog.WithSocketPath("/tmp/app.sock"),
//	)
//	defer r.Close()
//	r.Record(vslog.KindInfo, vslog.SeverityLow, "service started")
//	r.RecordActivity(vslog.KindWarning, vslog.SeverityMid, 42, 0, "disk at 91%")
//
// # Wire contracts
//
// The durable line format (FormatLine/ParseLine) and the live envelope
// (EncodeEnvelope/DecodeEnvelope) are stable, parseable surfaces consumed by
// downstream tooling and the live viewer.
package vslog
