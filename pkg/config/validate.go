package config

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "export.locale").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Has reports whether field has a validation error.
func (e ValidationError) Has(field string) bool {
	for _, err := range e.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Validate validates the entire configuration and returns a ValidationError
// collecting every failed rule, or nil.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateExport(&cfg.Export)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateRetention(&cfg.Retention)...)
	errs = append(errs, validateEvents(&cfg.Events)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if cfg.MCP.Name == "" {
		errs = append(errs, FieldError{Field: "mcp.name", Message: "server name is required"})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

// Valid values for enumerated fields.
var (
	validFormats   = []string{"xlsx", "csv", "json"}
	validLocales   = []string{"en", "ja"}
	validBackends  = []string{"sqlite", "memory", "mysql", "redis"}
	validDrivers   = []string{"sqlite3", "sqlite"}
	validLevels    = []string{"debug", "info", "warn", "error"}
	validLogFormat = []string{"json", "text", "console"}
	validSamplers  = []string{"always", "never", "ratio"}
)

// Characters Excel rejects in worksheet names.
const invalidSheetChars = `[]:*?/\`

func validateExport(cfg *ExportConfig) []FieldError {
	var errs []FieldError

	if !contains(validFormats, cfg.DefaultFormat) {
		errs = append(errs, oneOf("export.default_format", cfg.DefaultFormat, validFormats))
	}

	switch n := utf8.RuneCountInString(cfg.SheetName); {
	case n == 0 || n > 31:
		errs = append(errs, FieldError{Field: "export.sheet_name", Message: "sheet name must be 1 to 31 characters"})
	case strings.ContainsAny(cfg.SheetName, invalidSheetChars):
		errs = append(errs, FieldError{Field: "export.sheet_name", Message: fmt.Sprintf("sheet name cannot contain any of %s", invalidSheetChars)})
	}

	if utf8.RuneCountInString(cfg.Delimiter) != 1 {
		errs = append(errs, FieldError{Field: "export.delimiter", Message: "delimiter must be a single character"})
	} else if strings.ContainsAny(cfg.Delimiter, "\r\n") {
		errs = append(errs, FieldError{Field: "export.delimiter", Message: "delimiter cannot be a line break"})
	}

	if cfg.MaxColumnWidth <= 0 {
		errs = append(errs, FieldError{Field: "export.max_column_width", Message: "max column width must be positive"})
	}
	if cfg.StoreTimeout <= 0 {
		errs = append(errs, FieldError{Field: "export.store_timeout", Message: "store timeout must be positive"})
	}
	if !contains(validLocales, cfg.Locale) {
		errs = append(errs, oneOf("export.locale", cfg.Locale, validLocales))
	}

	return errs
}

func validateStorage(cfg *StorageConfig) []FieldError {
	var errs []FieldError

	if !contains(validBackends, cfg.Backend) {
		errs = append(errs, oneOf("storage.backend", cfg.Backend, validBackends))
	}

	// Only the selected backend's section is checked.
	switch cfg.Backend {
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{Field: "storage.sqlite.path", Message: "path is required for sqlite backend"})
		}
		if !contains(validDrivers, cfg.SQLite.Driver) {
			errs = append(errs, oneOf("storage.sqlite.driver", cfg.SQLite.Driver, validDrivers))
		}
		if cfg.SQLite.MaxOpenConns < 0 {
			errs = append(errs, FieldError{Field: "storage.sqlite.max_open_conns", Message: "must be non-negative"})
		}
		if cfg.SQLite.MaxIdleConns < 0 {
			errs = append(errs, FieldError{Field: "storage.sqlite.max_idle_conns", Message: "must be non-negative"})
		}
		if cfg.SQLite.BusyTimeout < 0 {
			errs = append(errs, FieldError{Field: "storage.sqlite.busy_timeout", Message: "must be non-negative"})
		}

	case "mysql":
		if cfg.MySQL.DSN == "" {
			errs = append(errs, FieldError{Field: "storage.mysql.dsn", Message: "dsn is required for mysql backend"})
		}
		if cfg.MySQL.MaxOpenConns < 0 {
			errs = append(errs, FieldError{Field: "storage.mysql.max_open_conns", Message: "must be non-negative"})
		}
		if cfg.MySQL.ConnMaxLifetime < 0 {
			errs = append(errs, FieldError{Field: "storage.mysql.conn_max_lifetime", Message: "must be non-negative"})
		}

	case "redis":
		if cfg.Redis.Address == "" {
			errs = append(errs, FieldError{Field: "storage.redis.address", Message: "address is required for redis backend"})
		}
		if cfg.Redis.DB < 0 {
			errs = append(errs, FieldError{Field: "storage.redis.db", Message: "must be non-negative"})
		}
	}

	return errs
}

func validateRetention(cfg *RetentionConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxVersions < 0 {
		errs = append(errs, FieldError{Field: "retention.max_versions", Message: "must be non-negative"})
	}
	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{Field: "retention.retention_days", Message: "must be non-negative"})
	}
	if cfg.Enabled && cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			errs = append(errs, FieldError{Field: "retention.schedule", Message: fmt.Sprintf("invalid cron expression: %v", err)})
		}
	}

	return errs
}

func validateEvents(cfg *EventsConfig) []FieldError {
	if !cfg.Enabled {
		return nil
	}

	var errs []FieldError
	u, err := url.Parse(cfg.RabbitMQ.URL)
	switch {
	case cfg.RabbitMQ.URL == "":
		errs = append(errs, FieldError{Field: "events.rabbitmq.url", Message: "url is required when events are enabled"})
	case err != nil:
		errs = append(errs, FieldError{Field: "events.rabbitmq.url", Message: "invalid url"})
	case u.Scheme != "amqp" && u.Scheme != "amqps":
		errs = append(errs, FieldError{Field: "events.rabbitmq.url", Message: "url scheme must be amqp or amqps"})
	}
	if cfg.RabbitMQ.Exchange == "" && cfg.RabbitMQ.Queue == "" {
		errs = append(errs, FieldError{Field: "events.rabbitmq.queue", Message: "queue is required when no exchange is set"})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	if !contains(validLevels, strings.ToLower(cfg.Logging.Level)) {
		errs = append(errs, oneOf("telemetry.logging.level", cfg.Logging.Level, validLevels))
	}
	if !contains(validLogFormat, strings.ToLower(cfg.Logging.Format)) {
		errs = append(errs, oneOf("telemetry.logging.format", cfg.Logging.Format, validLogFormat))
	}
	for i, p := range cfg.Logging.RedactPatterns {
		if p.Pattern == "" {
			errs = append(errs, FieldError{Field: fmt.Sprintf("telemetry.logging.redact_patterns[%d].pattern", i), Message: "pattern is required"})
		}
	}

	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{Field: "telemetry.metrics.path", Message: "path must start with /"})
	}
	if cfg.Metrics.Namespace == "" {
		errs = append(errs, FieldError{Field: "telemetry.metrics.namespace", Message: "namespace is required"})
	}
	for i := 1; i < len(cfg.Metrics.DurationBuckets); i++ {
		if cfg.Metrics.DurationBuckets[i] <= cfg.Metrics.DurationBuckets[i-1] {
			errs = append(errs, FieldError{Field: "telemetry.metrics.duration_buckets", Message: "buckets must be strictly increasing"})
			break
		}
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.Endpoint == "" {
			errs = append(errs, FieldError{Field: "telemetry.tracing.endpoint", Message: "endpoint is required when tracing is enabled"})
		}
		if !contains(validSamplers, cfg.Tracing.Sampler) {
			errs = append(errs, oneOf("telemetry.tracing.sampler", cfg.Tracing.Sampler, validSamplers))
		}
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{Field: "telemetry.tracing.sample_ratio", Message: "sample ratio must be between 0.0 and 1.0"})
	}

	return errs
}

func oneOf(field, value string, valid []string) FieldError {
	return FieldError{
		Field:   field,
		Message: fmt.Sprintf("invalid value %q (valid: %s)", value, strings.Join(valid, ", ")),
	}
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
