// Package config handles configuration loading and validation for roost.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	GitPath  string         `yaml:"git_path"`
	Scan     ScanConfig     `yaml:"scan"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	DataDir  string         `yaml:"-"` // set by caller, not from config file
}

// ScanConfig tunes the discovery walk.
type ScanConfig struct {
	// MaxDepth bounds the breadth-first walk, counting the scan root as 0.
	MaxDepth int `yaml:"max_depth"`
	// DirTimeoutSeconds is the soft wall-clock bound per scan directory.
	DirTimeoutSeconds int `yaml:"dir_timeout_seconds"`
	// CooldownSeconds is the minimum gap between scan starts.
	CooldownSeconds int `yaml:"cooldown_seconds"`
	// Ignore holds doublestar globs for directory names to skip, on top
	// of the built-in noise set.
	Ignore []string `yaml:"ignore"`
}

// ServerConfig configures the local HTTP daemon.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig tunes the SQLite connection pool.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		GitPath: "git",
		Scan: ScanConfig{
			MaxDepth:          5,
			DirTimeoutSeconds: 60,
			CooldownSeconds:   5,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:7420",
		},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			BusyTimeout:  5000,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the
// provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills zero values left by a partial config file.
func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.GitPath == "" {
		c.GitPath = def.GitPath
	}
	if c.Scan.MaxDepth == 0 {
		c.Scan.MaxDepth = def.Scan.MaxDepth
	}
	if c.Scan.DirTimeoutSeconds == 0 {
		c.Scan.DirTimeoutSeconds = def.Scan.DirTimeoutSeconds
	}
	if c.Scan.CooldownSeconds == 0 {
		c.Scan.CooldownSeconds = def.Scan.CooldownSeconds
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = def.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = def.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = def.Database.BusyTimeout
	}
}
