package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the yaml configuration for the CLI.
type Config struct {
	// DBPath is the SQLite database location.
	DBPath string `yaml:"db_path"`
	// SnapshotPath is where the reactive container persists its snapshot.
	SnapshotPath string `yaml:"snapshot_path"`
	// DebounceMillis is the snapshot debounce window.
	DebounceMillis int `yaml:"debounce_millis"`
	Log            struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// DefaultConfig returns the configuration used when no file is given:
// everything lives under ~/.ofrenda.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".ofrenda")

	cfg := Config{
		DBPath:         filepath.Join(base, "ofrenda.db"),
		SnapshotPath:   filepath.Join(base, "snapshot.json"),
		DebounceMillis: 500,
	}
	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	return cfg
}

// LoadConfig reads a yaml config file, filling unset fields from defaults.
// An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = DefaultConfig().DBPath
	}
	if cfg.DebounceMillis <= 0 {
		cfg.DebounceMillis = 500
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	return cfg, nil
}
