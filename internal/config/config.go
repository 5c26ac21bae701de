// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	API    APIConfig    `toml:"api"`
	Client ClientConfig `toml:"client"`
	UI     UIConfig     `toml:"ui"`
}

// APIConfig holds backend connection settings.
type APIConfig struct {
	Base string `toml:"base"`
}

// ClientConfig identifies which client's instances the dashboard narrows to.
type ClientConfig struct {
	Slug         string `toml:"slug"`
	SystemHint   string `toml:"system_hint"`
	InstanceHint string `toml:"instance_hint"`
}

// UIConfig holds presentation settings, including the client-side login gate.
type UIConfig struct {
	AccessCode  string `toml:"access_code"`
	AutoLogin   bool   `toml:"autologin"`
	NarrowWidth int    `toml:"narrow_width"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Base: "http://localhost:8080",
		},
		UI: UIConfig{
			NarrowWidth: 80,
		},
	}
}

// Load reads configuration from a TOML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Load from file if it exists
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, err
			}
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MIRA_API_BASE"); v != "" {
		cfg.API.Base = v
	}

	if v := os.Getenv("MIRA_CLIENT"); v != "" {
		cfg.Client.Slug = v
	}

	if v := os.Getenv("MIRA_SYSTEM_HINT"); v != "" {
		cfg.Client.SystemHint = v
	}

	if v := os.Getenv("MIRA_INSTANCE_HINT"); v != "" {
		cfg.Client.InstanceHint = v
	}

	if v := os.Getenv("MIRA_ACCESS_CODE"); v != "" {
		cfg.UI.AccessCode = v
	}

	if v := os.Getenv("MIRA_AUTOLOGIN"); v != "" {
		cfg.UI.AutoLogin = Truthy(v)
	}

	if v := os.Getenv("MIRA_NARROW_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.UI.NarrowWidth = n
		}
	}
}

// Truthy reports whether a flag value matches the embedding contract's
// truthy pattern: 1, true or yes, case-insensitive.
func Truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// DataDir returns the path to the mira data directory (~/.mira).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".mira"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
