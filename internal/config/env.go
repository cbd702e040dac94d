package config

import (
	"os"
	"strconv"
)

// FromEnv overlays VSLOG_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("VSLOG_SOCKET"); v != "" {
		cfg.Socket = v
	}
	if v := os.Getenv("VSLOG_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("VSLOG_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("VSLOG_ARCHIVE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Archive = b
		}
	}
	if v := os.Getenv("VSLOG_ARCHIVE_SYNC"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ArchiveSync = b
		}
	}
	if v := os.Getenv("VSLOG_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("VSLOG_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("VSLOG_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
