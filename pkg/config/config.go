// Package config loads an optional YAML configuration file supplying
// defaults for kvsd's command-line arguments and flags, read once at
// process startup.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the defaults an optional file may supply. Every field is
// optional; a zero value means "not set, use the built-in default or a
// CLI override".
type Config struct {
	Dir         string `yaml:"dir"`
	MaxBackups  int    `yaml:"max_backups"`
	MaxThreads  int    `yaml:"max_threads"`
	LogLevel    string `yaml:"log_level"`
	LogJSON     bool   `yaml:"log_json"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// Load reads and parses a YAML config file at path. It is the caller's
// job to apply CLI flags and positional arguments on top, since those
// always take precedence over file values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Merge returns a Config with every zero-valued field in override filled
// in from base, so CLI-provided values (passed as override) win over a
// loaded file's defaults (passed as base).
func Merge(base, override Config) Config {
	merged := base
	if override.Dir != "" {
		merged.Dir = override.Dir
	}
	if override.MaxBackups != 0 {
		merged.MaxBackups = override.MaxBackups
	}
	if override.MaxThreads != 0 {
		merged.MaxThreads = override.MaxThreads
	}
	if override.LogLevel != "" {
		merged.LogLevel = override.LogLevel
	}
	if override.LogJSON {
		merged.LogJSON = override.LogJSON
	}
	if override.MetricsAddr != "" {
		merged.MetricsAddr = override.MetricsAddr
	}
	return merged
}
