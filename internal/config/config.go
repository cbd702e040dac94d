package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	logpkg "github.com/lazy-eggplant/vs.logger/pkg/log"
)

// Config is the top-level server configuration loaded from file/env.
type Config struct {
	// Socket is the unixgram path the bridge listens on and recorders
	// publish to.
	Socket string `yaml:"socket" json:"socket"`
	// HTTPAddr is the listen address for the viewer and API server.
	HTTPAddr string `yaml:"httpAddr" json:"httpAddr"`
	// DataDir holds the event archive when enabled.
	DataDir string `yaml:"dataDir" json:"dataDir"`
	// Archive enables the Pebble-backed event archive and its read API.
	Archive bool `yaml:"archive" json:"archive"`
	// ArchiveSync forces a WAL fsync per archived event.
	ArchiveSync bool `yaml:"archiveSync" json:"archiveSync"`
	// Log configures the diagnostic logger.
	Log logpkg.Config `yaml:"log" json:"log"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Socket:   DefaultSocketPath(),
		HTTPAddr: ":18080",
		DataDir:  DefaultDataDir(),
		Log:      logpkg.Config{Level: "info", Format: "text"},
	}
}

// Load reads configuration from a YAML or JSON file (by extension). If path
// is empty, it returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return cfg, nil
}
