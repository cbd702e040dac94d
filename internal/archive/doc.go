// Package archive retains envelopes the bridge received in a Pebble-backed
// store and serves token-paged reads for the HTTP events API.
//
// The archive is a best-effort server-side copy: the producer's durable sink
// remains the authoritative record. Entries are keyed by the envelope's own
// sequence id, so the keyspace orders exactly like the recorder's total
// order and duplicate deliveries collapse onto one key.
package archive
