// Package log provides the structured logging facade used by vs.logger
// components for operational diagnostics.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. Library packages receive a Logger at
// construction time and report all contained failures through it; nothing
// in the library writes to stdout directly.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("bridge"))
//	l.Info("listening", log.Str("socket", path))
//
// # Configuration
//
// Use ApplyConfig to build a logger from a declarative Config, supporting
// text or JSON formatting.
package log
