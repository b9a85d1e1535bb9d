// Package config handles configuration loading and saving.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/linanwx/aggrechat/logger"
)

const (
	configFileName = "config.yaml"
	configDirName  = ".aggrechat"

	envHome     = "AGGRECHAT_HOME"
	envURL      = "AGGRECHAT_URL"
	envAPIKey   = "AGGRECHAT_API_KEY"
	envTheme    = "AGGRECHAT_THEME"
	envLogLevel = "AGGRECHAT_LOG_LEVEL"
)

var configDirOverride string

// SetConfigDir overrides the config directory for the current process.
// Empty value clears the override.
func SetConfigDir(dir string) {
	configDirOverride = strings.TrimSpace(dir)
}

// Config is the root configuration structure.
type Config struct {
	Service ServiceConfig `json:"service" yaml:"service"`
	Reveal  RevealConfig  `json:"reveal,omitempty" yaml:"reveal,omitempty"`
	UI      UIConfig      `json:"ui,omitempty" yaml:"ui,omitempty"`
	Logging LoggingConfig `json:"logging,omitempty" yaml:"logging,omitempty"`
}

// ServiceConfig points at the aggregation service.
type ServiceConfig struct {
	URL            string `json:"url" yaml:"url"`
	APIKey         string `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
	TimeoutSeconds int    `json:"timeoutSeconds,omitempty" yaml:"timeoutSeconds,omitempty"` // 0 = no timeout
}

// RevealConfig controls the typing effect.
type RevealConfig struct {
	IntervalMs int `json:"intervalMs,omitempty" yaml:"intervalMs,omitempty"` // defaults to 15
	Step       int `json:"step,omitempty" yaml:"step,omitempty"`             // characters per tick, defaults to 1
}

// UIConfig contains display preferences.
type UIConfig struct {
	Theme       string `json:"theme,omitempty" yaml:"theme,omitempty"` // dark, light
	ShowDetails bool   `json:"showDetails,omitempty" yaml:"showDetails,omitempty"`
	WordWrap    int    `json:"wordWrap,omitempty" yaml:"wordWrap,omitempty"` // 0 = terminal width
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Enabled *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Level   string `json:"level,omitempty" yaml:"level,omitempty"`   // debug, info, warn, error
	Stdout  bool   `json:"stdout,omitempty" yaml:"stdout,omitempty"` // also log to the console
	File    string `json:"file,omitempty" yaml:"file,omitempty"`     // relative to the config dir
}

// ConfigDir returns the directory holding config.yaml.
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}
	if dir := strings.TrimSpace(os.Getenv(envHome)); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, configDirName), nil
}

// ConfigPath returns the full path of config.yaml.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads config.yaml (a missing file yields defaults), applies a .env
// file from the working directory if present, then environment overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env file", "err", err)
	}

	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		cfg = &Config{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the config to config.yaml, creating the directory if needed.
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// Validate checks that the service URL is usable.
func (c *Config) Validate() error {
	raw := strings.TrimSpace(c.Service.URL)
	if raw == "" {
		return errors.New("service.url is not configured; run 'aggrechat onboard' or set " + envURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid service.url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid service.url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid service.url %q: missing host", raw)
	}
	return nil
}

// Timeout returns the request timeout; zero means none.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Service.TimeoutSeconds) * time.Second
}

// RevealInterval returns the time between reveal ticks.
func (c *Config) RevealInterval() time.Duration {
	return time.Duration(c.Reveal.IntervalMs) * time.Millisecond
}

// BuildLoggerConfig converts logging settings for logger.Init.
func (c *Config) BuildLoggerConfig() logger.Config {
	enabled := true
	if c.Logging.Enabled != nil {
		enabled = *c.Logging.Enabled
	}
	return logger.Config{
		Enabled: enabled,
		Level:   c.Logging.Level,
		Stdout:  c.Logging.Stdout,
		File:    c.Logging.File,
	}
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(envURL)); v != "" {
		c.Service.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(envAPIKey)); v != "" {
		c.Service.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(envTheme)); v != "" {
		c.UI.Theme = v
	}
	if v := strings.TrimSpace(os.Getenv(envLogLevel)); v != "" {
		c.Logging.Level = v
	}
}
