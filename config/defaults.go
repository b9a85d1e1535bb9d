package config

import "strings"

const (
	defaultServiceURL       = "http://127.0.0.1:8000/api/chat"
	defaultRevealIntervalMs = 15
	defaultRevealStep       = 1
	defaultTheme            = "dark"
)

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			URL: defaultServiceURL,
		},
		Reveal: RevealConfig{
			IntervalMs: defaultRevealIntervalMs,
			Step:       defaultRevealStep,
		},
		UI: UIConfig{
			Theme: defaultTheme,
		},
		Logging: defaultLoggingConfig(),
	}
}

func defaultLoggingConfig() LoggingConfig {
	enabled := true
	return LoggingConfig{
		Enabled: &enabled,
		Level:   "info",
		Stdout:  false,
		File:    "logs/aggrechat.log",
	}
}

func (c *Config) applyDefaults() {
	c.Service.URL = strings.TrimSpace(c.Service.URL)
	if c.Service.URL == "" {
		c.Service.URL = defaultServiceURL
	}
	if c.Service.TimeoutSeconds < 0 {
		c.Service.TimeoutSeconds = 0
	}
	if c.Reveal.IntervalMs <= 0 {
		c.Reveal.IntervalMs = defaultRevealIntervalMs
	}
	if c.Reveal.Step <= 0 {
		c.Reveal.Step = defaultRevealStep
	}

	switch strings.ToLower(strings.TrimSpace(c.UI.Theme)) {
	case "light":
		c.UI.Theme = "light"
	default:
		c.UI.Theme = defaultTheme
	}
	if c.UI.WordWrap < 0 {
		c.UI.WordWrap = 0
	}

	def := defaultLoggingConfig()
	if c.Logging == (LoggingConfig{}) {
		c.Logging = def
		return
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Level
	}
	if c.Logging.File == "" && !c.Logging.Stdout {
		c.Logging.File = def.File
	}
	if c.Logging.Enabled == nil {
		c.Logging.Enabled = def.Enabled
	}
}
