// Package config loads the vslog server configuration from file and
// environment with sensible platform-aware defaults.
package config
