package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	yaml := `
api:
  base_url: https://api.coingecko.com/api/v3
  vs_currency: eur
tracker:
  interval: 2m
  top_n: 25
sheet:
  path: /tmp/out.xlsx
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.VsCurrency != "eur" {
		t.Errorf("API.VsCurrency = %q, want %q", cfg.API.VsCurrency, "eur")
	}
	if cfg.Tracker.Interval != 2*time.Minute {
		t.Errorf("Tracker.Interval = %v, want %v", cfg.Tracker.Interval, 2*time.Minute)
	}
	if cfg.Tracker.TopN != 25 {
		t.Errorf("Tracker.TopN = %d, want 25", cfg.Tracker.TopN)
	}
	if cfg.Sheet.Path != "/tmp/out.xlsx" {
		t.Errorf("Sheet.Path = %q, want %q", cfg.Sheet.Path, "/tmp/out.xlsx")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_PG_PASSWORD", "secret123")

	yaml := `
sinks:
  postgres:
    enabled: true
    host: localhost
    name: tracker
    user: tracker
    password: ${TEST_PG_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Sinks.Postgres.DB.Password != "secret123" {
		t.Errorf("Postgres password = %q, want %q", cfg.Sinks.Postgres.DB.Password, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, "tracker:\n  top_n: 10\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("API.BaseURL = %q, want default %q", cfg.API.BaseURL, DefaultBaseURL)
	}
	if cfg.Tracker.Interval != DefaultInterval {
		t.Errorf("Tracker.Interval = %v, want default %v", cfg.Tracker.Interval, DefaultInterval)
	}
	if cfg.Tracker.TopN != 10 {
		t.Errorf("Tracker.TopN = %d, want 10 (explicit value kept)", cfg.Tracker.TopN)
	}
	if cfg.Sheet.Path != DefaultSheetPath {
		t.Errorf("Sheet.Path = %q, want default %q", cfg.Sheet.Path, DefaultSheetPath)
	}
	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Server.Port = %d, want default %d", cfg.Server.Port, DefaultServerPort)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("Logging.Level = %q, want default %q", cfg.Logging.Level, DefaultLogLevel)
	}
}

func TestLoadWithDefaults_MaxRetries(t *testing.T) {
	t.Run("explicit zero disables retries", func(t *testing.T) {
		path := writeTempFile(t, "api:\n  max_retries: 0\n")

		cfg, err := LoadWithDefaults(path)
		if err != nil {
			t.Fatalf("LoadWithDefaults failed: %v", err)
		}
		if cfg.API.MaxRetries == nil || *cfg.API.MaxRetries != 0 {
			t.Errorf("API.MaxRetries = %v, want explicit 0 kept", cfg.API.MaxRetries)
		}
	})

	t.Run("unset falls back to default", func(t *testing.T) {
		path := writeTempFile(t, "api:\n  vs_currency: eur\n")

		cfg, err := LoadWithDefaults(path)
		if err != nil {
			t.Fatalf("LoadWithDefaults failed: %v", err)
		}
		if cfg.API.MaxRetries == nil || *cfg.API.MaxRetries != DefaultMaxRetries {
			t.Errorf("API.MaxRetries = %v, want default %d", cfg.API.MaxRetries, DefaultMaxRetries)
		}
	})
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default() does not validate: %v", err)
	}
	if cfg.Tracker.Interval != 5*time.Minute {
		t.Errorf("default interval = %v, want 5m", cfg.Tracker.Interval)
	}
	if cfg.Tracker.TopN != 50 {
		t.Errorf("default top_n = %d, want 50", cfg.Tracker.TopN)
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("API.BaseURL = %q, want default %q", cfg.API.BaseURL, DefaultBaseURL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero interval", func(c *Config) { c.Tracker.Interval = -1 }},
		{"top_n too large", func(c *Config) { c.Tracker.TopN = 5000 }},
		{"missing sheet path", func(c *Config) { c.Sheet.Path = "" }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"negative max_retries", func(c *Config) { retries := -1; c.API.MaxRetries = &retries }},
		{"postgres enabled without host", func(c *Config) { c.Sinks.Postgres.Enabled = true }},
		{"kafka enabled without brokers", func(c *Config) { c.Sinks.Kafka.Enabled = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
