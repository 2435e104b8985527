package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TABULA_"

// LoadConfig loads configuration from a YAML file at the specified path.
// Fields absent from the file keep their defaults. The result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg, err := readConfig(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// TABULA_* environment overrides, which take precedence over the file.
//
// The loading sequence is:
// 1. Load YAML from file on top of defaults
// 2. Apply environment variable overrides
// 3. Validate final configuration
//
// When optional is true and the file does not exist, loading starts from
// the defaults instead of failing.
func LoadConfigWithEnvOverrides(path string, optional bool) (*Config, error) {
	cfg, err := readConfig(path)
	if err != nil {
		if !optional || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = NewDefaultConfig()
	}

	if err := applyEnvOverrides(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func readConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}
	return cfg, nil
}

func decode(data []byte) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// lookupFunc matches os.LookupEnv.
type lookupFunc func(key string) (string, bool)

// applyEnvOverrides applies TABULA_SECTION_FIELD overrides. Malformed
// numeric, boolean, or duration values are reported together.
func applyEnvOverrides(cfg *Config, lookup lookupFunc) error {
	o := &overrider{lookup: lookup}

	// Export overrides
	o.str("EXPORT_DEFAULT_FORMAT", &cfg.Export.DefaultFormat)
	o.str("EXPORT_SHEET_NAME", &cfg.Export.SheetName)
	o.str("EXPORT_DELIMITER", &cfg.Export.Delimiter)
	o.integer("EXPORT_MAX_COLUMN_WIDTH", &cfg.Export.MaxColumnWidth)
	o.duration("EXPORT_STORE_TIMEOUT", &cfg.Export.StoreTimeout)
	o.str("EXPORT_LOCALE", &cfg.Export.Locale)

	// Storage overrides
	o.str("STORAGE_BACKEND", &cfg.Storage.Backend)
	o.str("STORAGE_SQLITE_PATH", &cfg.Storage.SQLite.Path)
	o.str("STORAGE_SQLITE_DRIVER", &cfg.Storage.SQLite.Driver)
	o.boolean("STORAGE_SQLITE_WAL_MODE", &cfg.Storage.SQLite.WALMode)
	o.duration("STORAGE_SQLITE_BUSY_TIMEOUT", &cfg.Storage.SQLite.BusyTimeout)
	o.str("STORAGE_MYSQL_DSN", &cfg.Storage.MySQL.DSN)
	o.str("STORAGE_REDIS_ADDRESS", &cfg.Storage.Redis.Address)
	o.str("STORAGE_REDIS_PASSWORD", &cfg.Storage.Redis.Password)
	o.integer("STORAGE_REDIS_DB", &cfg.Storage.Redis.DB)
	o.str("STORAGE_REDIS_KEY_PREFIX", &cfg.Storage.Redis.KeyPrefix)

	// Retention overrides
	o.boolean("RETENTION_ENABLED", &cfg.Retention.Enabled)
	o.integer("RETENTION_MAX_VERSIONS", &cfg.Retention.MaxVersions)
	o.integer("RETENTION_RETENTION_DAYS", &cfg.Retention.RetentionDays)
	o.str("RETENTION_SCHEDULE", &cfg.Retention.Schedule)

	// Events overrides
	o.boolean("EVENTS_ENABLED", &cfg.Events.Enabled)
	o.str("EVENTS_RABBITMQ_URL", &cfg.Events.RabbitMQ.URL)
	o.str("EVENTS_RABBITMQ_EXCHANGE", &cfg.Events.RabbitMQ.Exchange)
	o.str("EVENTS_RABBITMQ_ROUTING_KEY", &cfg.Events.RabbitMQ.RoutingKey)
	o.str("EVENTS_RABBITMQ_QUEUE", &cfg.Events.RabbitMQ.Queue)

	// Telemetry overrides
	o.str("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	o.str("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	o.boolean("TELEMETRY_LOGGING_REDACT", &cfg.Telemetry.Logging.Redact)
	o.boolean("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	o.str("TELEMETRY_METRICS_LISTEN_ADDRESS", &cfg.Telemetry.Metrics.ListenAddress)
	o.str("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	o.boolean("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	o.str("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	o.boolean("TELEMETRY_TRACING_INSECURE", &cfg.Telemetry.Tracing.Insecure)
	o.str("TELEMETRY_TRACING_SAMPLER", &cfg.Telemetry.Tracing.Sampler)
	o.float("TELEMETRY_TRACING_SAMPLE_RATIO", &cfg.Telemetry.Tracing.SampleRatio)

	if len(o.errs) > 0 {
		return ValidationError{Errors: o.errs}
	}
	return nil
}

// overrider reads typed environment values and records parse failures.
type overrider struct {
	lookup lookupFunc
	errs   []FieldError
}

func (o *overrider) get(key string) (string, bool) {
	val, ok := o.lookup(EnvPrefix + key)
	if !ok || val == "" {
		return "", false
	}
	return val, true
}

func (o *overrider) fail(key, msg string) {
	o.errs = append(o.errs, FieldError{Field: EnvPrefix + key, Message: msg})
}

func (o *overrider) str(key string, dst *string) {
	if val, ok := o.get(key); ok {
		*dst = val
	}
}

func (o *overrider) integer(key string, dst *int) {
	if val, ok := o.get(key); ok {
		i, err := strconv.Atoi(val)
		if err != nil {
			o.fail(key, fmt.Sprintf("invalid integer %q", val))
			return
		}
		*dst = i
	}
}

func (o *overrider) boolean(key string, dst *bool) {
	if val, ok := o.get(key); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			o.fail(key, fmt.Sprintf("invalid boolean %q", val))
			return
		}
		*dst = b
	}
}

func (o *overrider) float(key string, dst *float64) {
	if val, ok := o.get(key); ok {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			o.fail(key, fmt.Sprintf("invalid number %q", val))
			return
		}
		*dst = f
	}
}

func (o *overrider) duration(key string, dst *time.Duration) {
	if val, ok := o.get(key); ok {
		d, err := time.ParseDuration(val)
		if err != nil {
			o.fail(key, fmt.Sprintf("invalid duration %q", val))
			return
		}
		*dst = d
	}
}
