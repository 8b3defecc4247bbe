package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Relaxation.Steps != 200 {
		t.Errorf("expected 200 relaxation steps, got %d", cfg.Relaxation.Steps)
	}
	if cfg.Structure.Vacuum != 10.0 {
		t.Errorf("expected 10.0 vacuum, got %f", cfg.Structure.Vacuum)
	}
	if cfg.LLM.Model != "deepseek-chat" {
		t.Errorf("unexpected default model: %s", cfg.LLM.Model)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Output.Dir != "output" {
		t.Errorf("expected default output dir, got %s", cfg.Output.Dir)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
relaxation:
  steps: 500
structure:
  vacuum: 15.0
references:
  db_path: refs.db
telemetry:
  log_level: debug
  metrics_enabled: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Relaxation.Steps != 500 {
		t.Errorf("expected 500 steps, got %d", cfg.Relaxation.Steps)
	}
	if cfg.Structure.Vacuum != 15.0 {
		t.Errorf("expected 15.0 vacuum, got %f", cfg.Structure.Vacuum)
	}
	if cfg.References.DBPath != "refs.db" {
		t.Errorf("expected refs.db, got %s", cfg.References.DBPath)
	}
	if cfg.Telemetry.LogLevel != "debug" {
		t.Errorf("expected debug log level, got %s", cfg.Telemetry.LogLevel)
	}

	// Unset values keep defaults.
	if cfg.LLM.Timeout != 60*time.Second {
		t.Errorf("expected default LLM timeout, got %v", cfg.LLM.Timeout)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("relaxation: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestEnvOverridesAPIKey(t *testing.T) {
	t.Setenv(EnvAPIKey, "sk-test-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.APIKey != "sk-test-key" {
		t.Errorf("expected env API key, got %q", cfg.LLM.APIKey)
	}
}

func TestValidateRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "zero relaxation steps",
			mutate: func(c *Config) { c.Relaxation.Steps = 0 },
		},
		{
			name:   "negative vacuum",
			mutate: func(c *Config) { c.Structure.Vacuum = -1 },
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Telemetry.LogLevel = "verbose" },
		},
		{
			name:   "bad log format",
			mutate: func(c *Config) { c.Telemetry.LogFormat = "xml" },
		},
		{
			name:   "empty output dir",
			mutate: func(c *Config) { c.Output.Dir = "" },
		},
		{
			name: "afm max height below min",
			mutate: func(c *Config) {
				c.Microscopy.AFM.MinHeight = 5.0
				c.Microscopy.AFM.MaxHeight = 3.0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestToTelemetryConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Telemetry.LogLevel = "debug"
	cfg.Telemetry.MetricsEnabled = true
	cfg.Telemetry.TracingEnabled = true
	cfg.Telemetry.TracingExporter = "otlp"
	cfg.Telemetry.TracingEndpoint = "collector:4317"

	tel := cfg.ToTelemetryConfig("1.2.3")

	if tel.ServiceVersion != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %s", tel.ServiceVersion)
	}
	if tel.Logging.Level != "debug" {
		t.Errorf("expected debug, got %s", tel.Logging.Level)
	}
	if !tel.Metrics.Enabled {
		t.Error("expected metrics enabled")
	}
	if tel.Tracing.Exporter != "otlp" || tel.Tracing.Endpoint != "collector:4317" {
		t.Errorf("tracing settings not propagated: %+v", tel.Tracing)
	}
	if err := tel.Validate(); err != nil {
		t.Errorf("converted telemetry config should validate: %v", err)
	}
}
