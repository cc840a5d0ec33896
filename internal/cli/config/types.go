// Package config provides configuration management for the goadmin CLI.
//
// Values are layered with koanf: defaults, then goadmin.yaml, then
// GOADMIN_* environment variables, then explicitly set flags.
package config

import (
	"time"
)

// Environment names.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Default configuration values.
const (
	DefaultEnv        = EnvDevelopment
	DefaultDevBaseURL = "http://127.0.0.1:8088"
	DefaultTimeout    = 5000 * time.Millisecond
	DefaultStateFile  = ".goadmin/session.db"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultUIPort     = 8766
)

// Config holds all CLI configuration options.
type Config struct {
	Environment  string    `koanf:"environment"`
	StatePath    string    `koanf:"state_path"`
	Verbose      bool      `koanf:"verbose"`
	OutputFormat string    `koanf:"output"`
	API          APIConfig `koanf:"api"`
	UI           UIConfig  `koanf:"ui"`

	// ProjectRoot is the directory relative paths resolve against.
	ProjectRoot string `koanf:"-"`
}

// APIConfig configures the admin backend connection.
type APIConfig struct {
	// BaseURL is used when Environment is production.
	BaseURL string `koanf:"base_url"`
	// DevBaseURL is used in every other environment.
	DevBaseURL string        `koanf:"dev_base_url"`
	Timeout    time.Duration `koanf:"timeout"`
	// PublicKey is a PEM file used to encrypt passwords before sending.
	PublicKey string `koanf:"public_key"`
}

// UIConfig holds configuration for the web console.
type UIConfig struct {
	Port          int    `koanf:"port"`
	SessionSecret string `koanf:"session_secret"`
	Watch         bool   `koanf:"watch"`
	AutoOpen      bool   `koanf:"auto_open"`
}

// IsProduction reports whether the production base URL applies.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// ResolveBaseURL picks the backend base URL for the configured environment.
func (c *Config) ResolveBaseURL() string {
	if c.IsProduction() {
		return c.API.BaseURL
	}
	if c.API.DevBaseURL == "" {
		return DefaultDevBaseURL
	}
	return c.API.DevBaseURL
}

// Timeout returns the request timeout, defaulting to DefaultTimeout.
func (c *Config) Timeout() time.Duration {
	if c.API.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.API.Timeout
}

// GetUIConfig returns the UI config with defaults applied for unset values.
func (c *Config) GetUIConfig() UIConfig {
	ui := c.UI
	if ui.Port == 0 {
		ui.Port = DefaultUIPort
	}
	return ui
}
