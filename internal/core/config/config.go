// Package config handles loading yousync configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yousync/yousync/internal/utils/retry"
)

// Config is the root configuration structure.
type Config struct {
	// StateDir is where correspondence store files live.
	StateDir string `yaml:"state_dir"`

	// Concurrency bounds how many issues are synced in parallel.
	Concurrency int `yaml:"concurrency"`

	// Retry configures adapter call backoff.
	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig holds backoff settings for adapter calls.
type RetryConfig struct {
	MaxRetries int      `yaml:"max_retries"`
	BaseDelay  Duration `yaml:"base_delay"`
	MaxDelay   Duration `yaml:"max_delay"`
}

// Duration is a time.Duration that unmarshals from YAML scalars like "500ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load reads a config file from the given path and expands environment
// variables in its content.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a config with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// FindConfigPath searches for a config file in standard locations.
func FindConfigPath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	candidates := []string{
		".yousync.yaml",
		".yousync.yml",
	}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "yousync", "config.yaml"))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			abs, _ := filepath.Abs(c)
			return abs
		}
	}

	return ""
}

// RetryOptions converts the configured backoff settings for the retry layer.
func (c *Config) RetryOptions() retry.Config {
	cfg := retry.DefaultConfig()
	if c.Retry.MaxRetries > 0 {
		cfg.MaxRetries = c.Retry.MaxRetries
	}
	if c.Retry.BaseDelay > 0 {
		cfg.BaseDelay = time.Duration(c.Retry.BaseDelay)
	}
	if c.Retry.MaxDelay > 0 {
		cfg.MaxDelay = time.Duration(c.Retry.MaxDelay)
	}
	return cfg
}

// applyDefaults sets default values for unset fields.
func (c *Config) applyDefaults() {
	if c.StateDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.StateDir = filepath.Join(home, ".yousync", "state")
		} else {
			c.StateDir = ".yousync-state"
		}
	}
	if c.Concurrency == 0 {
		c.Concurrency = 4
	}
}
