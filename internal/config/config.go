// Package config loads the docsearch YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bunchhieng/docsearch/internal/searchbox"
	"gopkg.in/yaml.v3"
)

// DefaultStallThreshold is how long a keyword search may run before the
// search box shows its loading indicator.
const DefaultStallThreshold = 300 * time.Millisecond

// Config represents the application configuration
type Config struct {
	DBPath           string                 `yaml:"db_path,omitempty"`
	AutoFocus        *bool                  `yaml:"auto_focus,omitempty"`
	LogLevel         string                 `yaml:"log_level,omitempty"`
	LogFile          string                 `yaml:"log_file,omitempty"`
	StallThreshold   Duration               `yaml:"stall_threshold,omitempty"`
	Placeholder      string                 `yaml:"placeholder,omitempty"`
	PlaceholderAskAI string                 `yaml:"placeholder_ask_ai,omitempty"`
	Translations     searchbox.Translations `yaml:"translations"`
}

// Duration is a time.Duration written as a Go duration string ("300ms").
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML writes the duration as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads config from the user's config directory.
// Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads config from path. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	c.applyDefaults()
	return &c, nil
}

// Save writes the config to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Dir returns the docsearch config directory.
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "docsearch"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "docsearch"), nil
}

// ShouldAutoFocus reports whether the search box takes focus on start.
func (c *Config) ShouldAutoFocus() bool {
	return c.AutoFocus == nil || *c.AutoFocus
}

// Stall returns the stall threshold as a time.Duration.
func (c *Config) Stall() time.Duration {
	return time.Duration(c.StallThreshold)
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.StallThreshold <= 0 {
		c.StallThreshold = Duration(DefaultStallThreshold)
	}
	c.Translations = c.Translations.WithDefaults()
	if c.Placeholder == "" {
		c.Placeholder = c.Translations.PlaceholderText
	}
	if c.PlaceholderAskAI == "" {
		c.PlaceholderAskAI = c.Translations.PlaceholderTextAskAI
	}
}
