package config

import (
	"testing"
	"time"
)

// TestNewDefaultConfig tests that defaults are complete and valid.
func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"export.default_format", cfg.Export.DefaultFormat, DefaultExportFormat},
		{"export.sheet_name", cfg.Export.SheetName, DefaultSheetName},
		{"export.delimiter", cfg.Export.Delimiter, DefaultDelimiter},
		{"export.max_column_width", cfg.Export.MaxColumnWidth, DefaultMaxColumnWidth},
		{"export.store_timeout", cfg.Export.StoreTimeout, 30 * time.Second},
		{"export.locale", cfg.Export.Locale, "en"},
		{"storage.backend", cfg.Storage.Backend, "sqlite"},
		{"storage.sqlite.path", cfg.Storage.SQLite.Path, DefaultSQLitePath},
		{"storage.sqlite.driver", cfg.Storage.SQLite.Driver, "sqlite3"},
		{"storage.sqlite.wal_mode", cfg.Storage.SQLite.WALMode, true},
		{"storage.redis.key_prefix", cfg.Storage.Redis.KeyPrefix, "tabula:"},
		{"retention.enabled", cfg.Retention.Enabled, false},
		{"retention.retention_days", cfg.Retention.RetentionDays, 90},
		{"retention.schedule", cfg.Retention.Schedule, "0 3 * * *"},
		{"events.enabled", cfg.Events.Enabled, false},
		{"events.rabbitmq.durable", cfg.Events.RabbitMQ.Durable, true},
		{"telemetry.logging.redact", cfg.Telemetry.Logging.Redact, true},
		{"telemetry.metrics.enabled", cfg.Telemetry.Metrics.Enabled, true},
		{"telemetry.metrics.path", cfg.Telemetry.Metrics.Path, "/metrics"},
		{"telemetry.tracing.enabled", cfg.Telemetry.Tracing.Enabled, false},
		{"telemetry.tracing.sample_ratio", cfg.Telemetry.Tracing.SampleRatio, 1.0},
		{"mcp.name", cfg.MCP.Name, "tabula"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

// TestApplyDefaults tests that set values are preserved and zeros filled.
func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.Export.SheetName = "Results"
	cfg.Export.StoreTimeout = 5 * time.Second
	cfg.Storage.Backend = "memory"
	cfg.Telemetry.Tracing.Sampler = "ratio"

	ApplyDefaults(cfg)

	if cfg.Export.SheetName != "Results" {
		t.Errorf("sheet name overwritten: %q", cfg.Export.SheetName)
	}
	if cfg.Export.StoreTimeout != 5*time.Second {
		t.Errorf("store timeout overwritten: %v", cfg.Export.StoreTimeout)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("backend overwritten: %q", cfg.Storage.Backend)
	}
	if cfg.Export.DefaultFormat != DefaultExportFormat {
		t.Errorf("default format = %q", cfg.Export.DefaultFormat)
	}
	if cfg.Telemetry.Tracing.SampleRatio != 0 {
		t.Errorf("ratio sampler got ratio %v, want explicit 0 kept", cfg.Telemetry.Tracing.SampleRatio)
	}
	if cfg.Storage.SQLite.WALMode {
		t.Error("ApplyDefaults must not touch booleans")
	}

	// Idempotent
	before := *cfg
	ApplyDefaults(cfg)
	if cfg.Export != before.Export || cfg.Storage.SQLite != before.Storage.SQLite {
		t.Error("ApplyDefaults is not idempotent")
	}
}
