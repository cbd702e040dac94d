// Package pebblestore wraps a Pebble database instance for the event
// archive, hiding write-option plumbing behind a small helper surface.
package pebblestore
