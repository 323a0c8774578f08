// Package config provides configuration management for ekagra.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultPort is the default HTTP port for the server.
	DefaultPort = 8970

	// DefaultTokenTTLHours keeps issued tokens valid for 30 days.
	DefaultTokenTTLHours = 24 * 30
)

// Config holds server settings, persisted as YAML in the data directory.
type Config struct {
	Port          int    `yaml:"port"`
	DBPath        string `yaml:"db_path,omitempty"`
	MaxConns      int    `yaml:"max_conns"`
	JWTSecret     string `yaml:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
	CORSOrigin    string `yaml:"cors_origin,omitempty"`
	Debug         bool   `yaml:"debug"`
}

// Default returns the default configuration. The JWT secret is left empty
// here; EnsureSettings generates one when the settings file is first
// written.
func Default() *Config {
	return &Config{
		Port:          DefaultPort,
		MaxConns:      4,
		TokenTTLHours: DefaultTokenTTLHours,
	}
}

// DataDir returns the ekagra data directory (~/.ekagra).
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ekagra"
	}
	return filepath.Join(home, ".ekagra")
}

// DBPath returns the default SQLite database path.
func DBPath() string {
	return filepath.Join(DataDir(), "ekagra.db")
}

// SettingsPath returns the server settings file path.
func SettingsPath() string {
	return filepath.Join(DataDir(), "settings.yaml")
}

// CredentialsPath returns the client token cache path.
func CredentialsPath() string {
	return filepath.Join(DataDir(), "credentials.json")
}

// GuestTimersPath returns the guest-mode timer history path. This file is
// the local analog of the browser localStorage key the web client uses.
func GuestTimersPath() string {
	return filepath.Join(DataDir(), "guest_timers.json")
}

// EnsureDataDir creates the data directory if missing.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0o755)
}

// EnsureSettings writes a default settings file if none exists. A fresh
// random JWT secret is generated so installations never share one.
func EnsureSettings() error {
	path := SettingsPath()
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	cfg := Default()
	secret, err := randomSecret()
	if err != nil {
		return fmt.Errorf("generate jwt secret: %w", err)
	}
	cfg.JWTSecret = secret
	return Save(cfg)
}

// EnsureAll creates the data directory and settings file.
func EnsureAll() error {
	if err := EnsureDataDir(); err != nil {
		return err
	}
	return EnsureSettings()
}

// Load reads the settings file, filling unset fields with defaults.
func Load() (*Config, error) {
	data, err := os.ReadFile(SettingsPath())
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	if cfg.Port <= 0 {
		cfg.Port = DefaultPort
	}
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 4
	}
	if cfg.TokenTTLHours <= 0 {
		cfg.TokenTTLHours = DefaultTokenTTLHours
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DBPath()
	}
	return cfg, nil
}

// Save writes the settings file.
func Save(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(SettingsPath(), data, 0o600)
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
