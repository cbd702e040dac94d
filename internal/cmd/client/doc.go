// Package client contains Cobra CLI commands for producing and following
// event logs.
package client
