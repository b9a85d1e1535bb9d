package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func useTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	SetConfigDir(dir)
	t.Cleanup(func() { SetConfigDir("") })
	for _, key := range []string{envURL, envAPIKey, envTheme, envLogLevel} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	useTempConfigDir(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Service.URL != defaultServiceURL {
		t.Fatalf("Service.URL = %q, want %q", cfg.Service.URL, defaultServiceURL)
	}
	if cfg.RevealInterval() != 15*time.Millisecond || cfg.Reveal.Step != 1 {
		t.Fatalf("reveal = %+v", cfg.Reveal)
	}
	if cfg.UI.Theme != "dark" {
		t.Fatalf("UI.Theme = %q", cfg.UI.Theme)
	}
	if cfg.Timeout() != 0 {
		t.Fatalf("Timeout() = %v, want none", cfg.Timeout())
	}
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	dir := useTempConfigDir(t)

	cfg := DefaultConfig()
	cfg.Service.URL = "https://agg.example.com/chat"
	cfg.Service.APIKey = "k"
	cfg.UI.Theme = "light"
	cfg.Reveal.IntervalMs = 5
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, configFileName)); err != nil {
		t.Fatalf("config file should exist: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Service.URL != "https://agg.example.com/chat" || got.Service.APIKey != "k" {
		t.Fatalf("Service = %+v", got.Service)
	}
	if got.UI.Theme != "light" || got.Reveal.IntervalMs != 5 {
		t.Fatalf("UI = %+v, Reveal = %+v", got.UI, got.Reveal)
	}
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	dir := useTempConfigDir(t)
	data := []byte("service:\n  url: http://svc:9000/x\nui:\n  theme: NEON\nlogging:\n  level: debug\n")
	if err := os.WriteFile(filepath.Join(dir, configFileName), data, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Service.URL != "http://svc:9000/x" {
		t.Fatalf("Service.URL = %q", cfg.Service.URL)
	}
	if cfg.UI.Theme != "dark" {
		t.Fatalf("unknown theme should fall back to dark, got %q", cfg.UI.Theme)
	}
	if cfg.Reveal.Step != defaultRevealStep {
		t.Fatalf("Reveal.Step = %d", cfg.Reveal.Step)
	}
	lc := cfg.BuildLoggerConfig()
	if !lc.Enabled || lc.Level != "debug" || lc.File == "" {
		t.Fatalf("logger config = %+v", lc)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	dir := useTempConfigDir(t)
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte("service: [\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail on malformed YAML")
	}
}

func TestEnvOverrides(t *testing.T) {
	useTempConfigDir(t)
	t.Setenv(envURL, "https://env.example.com/agg")
	t.Setenv(envAPIKey, "env-key")
	t.Setenv(envTheme, "light")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Service.URL != "https://env.example.com/agg" || cfg.Service.APIKey != "env-key" {
		t.Fatalf("Service = %+v", cfg.Service)
	}
	if cfg.UI.Theme != "light" {
		t.Fatalf("UI.Theme = %q", cfg.UI.Theme)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"http://localhost:8000/api", false},
		{"https://agg.example.com", false},
		{"", true},
		{"ftp://agg.example.com", true},
		{"http://", true},
		{"::bad", true},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Service.URL = tt.url
		err := cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
		}
	}
}

func TestConfigDirPrecedence(t *testing.T) {
	SetConfigDir("")
	t.Setenv(envHome, "/tmp/aggrechat-home")
	dir, err := ConfigDir()
	if err != nil || dir != "/tmp/aggrechat-home" {
		t.Fatalf("ConfigDir() = %q, %v", dir, err)
	}

	SetConfigDir(" /tmp/override ")
	t.Cleanup(func() { SetConfigDir("") })
	if dir, _ := ConfigDir(); dir != "/tmp/override" {
		t.Fatalf("ConfigDir() with override = %q", dir)
	}
}
