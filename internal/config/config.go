// Package config loads server configuration from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type SessionConfig struct {
	LifetimeDays  int  `yaml:"lifetime_days"`
	SecureCookies bool `yaml:"secure_cookies"`
}

// Load reads config from a YAML file if it exists, applies env overrides,
// and fills in defaults. Env vars:
//
//	BLOCKLIFT_ADDR, BLOCKLIFT_DB_PATH, BLOCKLIFT_SECURE_COOKIES
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BLOCKLIFT_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("BLOCKLIFT_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("BLOCKLIFT_SECURE_COOKIES"); v != "" {
		cfg.Session.SecureCookies = v == "true" || v == "1"
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "blocklift.db"
	}
	if cfg.Session.LifetimeDays <= 0 {
		cfg.Session.LifetimeDays = 30
	}
}
