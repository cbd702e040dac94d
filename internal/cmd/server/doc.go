// Package serverrun wires the bridge, archive and HTTP server together and
// runs them until shutdown.
package serverrun
