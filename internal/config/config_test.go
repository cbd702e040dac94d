package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Socket == "" {
		t.Fatalf("default socket empty")
	}
	if cfg.HTTPAddr != ":18080" {
		t.Fatalf("default http addr = %q", cfg.HTTPAddr)
	}
	if cfg.Archive {
		t.Fatalf("archive should default off")
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("default log level = %q", cfg.Log.Level)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vslog.yaml")
	data := []byte("socket: /run/custom.sock\nhttpAddr: \":9999\"\narchive: true\nlog:\n  level: debug\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Socket != "/run/custom.sock" || cfg.HTTPAddr != ":9999" || !cfg.Archive {
		t.Fatalf("yaml not applied: %+v", cfg)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q", cfg.Log.Level)
	}
	// Unset fields keep defaults.
	if cfg.DataDir == "" {
		t.Fatalf("dataDir default lost")
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vslog.json")
	if err := os.WriteFile(path, []byte(`{"httpAddr":":7777"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":7777" {
		t.Fatalf("json not applied: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestFromEnvOverlay(t *testing.T) {
	t.Setenv("VSLOG_SOCKET", "/run/env.sock")
	t.Setenv("VSLOG_ARCHIVE", "true")
	t.Setenv("VSLOG_LOG_LEVEL", "warn")
	t.Setenv("VSLOG_LOG_FILE", "/var/log/vslog-diag.log")
	cfg := Default()
	FromEnv(&cfg)
	if cfg.Socket != "/run/env.sock" || !cfg.Archive || cfg.Log.Level != "warn" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Log.File != "/var/log/vslog-diag.log" {
		t.Fatalf("log file not applied: %+v", cfg.Log)
	}
}

func TestDefaultSocketPathPrefersRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	if got := DefaultSocketPath(); got != "/run/user/1000/vslog.sock" {
		t.Fatalf("socket path = %q", got)
	}
}
