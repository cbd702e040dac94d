package config

import (
	"os"
	"path/filepath"
)

// DefaultSocketPath returns the default publish-channel socket path. It
// prefers the user's runtime directory and falls back to the system temp
// directory.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "vslog.sock")
	}
	return filepath.Join(os.TempDir(), "vslog.sock")
}

// DefaultDataDir returns the default archive directory based on the host OS.
// It prefers standard locations when available and falls back to a dotdir in
// the user's home directory.
func DefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil || homeDir == "" {
		return "./data"
	}

	// XDG (Linux) override
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "vslog")
	}

	// macOS: ~/Library/Application Support/vslog
	if isDir(filepath.Join(homeDir, "Library")) {
		return filepath.Join(homeDir, "Library", "Application Support", "vslog")
	}

	// Windows: %USERPROFILE%/AppData/Local/vslog
	if isDir(filepath.Join(homeDir, "AppData")) {
		return filepath.Join(homeDir, "AppData", "Local", "vslog")
	}

	return filepath.Join(homeDir, ".vslog")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
