// Package config reads the optional YAML configuration file. Values here
// are defaults; command-line flags always win.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Database is an sqlite file path or a postgres:// connection string.
	Database string `yaml:"database"`
	Debug    bool   `yaml:"debug"`
	// NotifySpec is the cron spec for the watch command sweep.
	NotifySpec string `yaml:"notify_spec"`
}

// DefaultDir returns the per-user configuration directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "tasktracker")
}

func Default() Config {
	return Config{
		Database:   filepath.Join(DefaultDir(), "tasktracker.db"),
		NotifySpec: "@every 1m",
	}
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist. Unset fields keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Database == "" {
		cfg.Database = Default().Database
	}
	if cfg.NotifySpec == "" {
		cfg.NotifySpec = Default().NotifySpec
	}
	return cfg, nil
}
