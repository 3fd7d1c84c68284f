// Package config loads the CLI configuration file.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration options.
type Config struct {
	ServerURL   string `yaml:"server_url"`
	LogLevel    string `yaml:"log_level,omitempty"`
	LogFormat   string `yaml:"log_format,omitempty"`
	DownloadDir string `yaml:"download_dir,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ServerURL: "http://localhost:8080",
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// configPath returns the path to the config file.
func configPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "driftbox", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "driftbox", "config.yaml")
}

// Load loads config from file, falling back to defaults, with
// DRIFTBOX_* environment variables taking precedence over both.
func Load() *Config {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(configPath()); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			cfg = DefaultConfig()
		}
	}

	if v := os.Getenv("DRIFTBOX_SERVER"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("DRIFTBOX_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DRIFTBOX_DOWNLOAD_DIR"); v != "" {
		cfg.DownloadDir = v
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = "."
	}

	return cfg
}

// Path returns the config file path (for help text).
func Path() string {
	return configPath()
}
