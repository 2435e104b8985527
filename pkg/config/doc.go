// Package config loads and validates tabula configuration.
//
// Configuration is YAML decoded on top of the defaults in defaults.go,
// optionally overridden by environment variables, then validated:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("tabula.yaml", true)
//
// # Environment Variable Overrides
//
// Environment variables follow the convention TABULA_SECTION_FIELD:
//
//   - TABULA_STORAGE_BACKEND overrides storage.backend
//   - TABULA_STORAGE_MYSQL_DSN overrides storage.mysql.dsn
//   - TABULA_EXPORT_STORE_TIMEOUT overrides export.store_timeout
//   - TABULA_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// A malformed value (for example a non-numeric TABULA_STORAGE_REDIS_DB) is
// reported as a FieldError rather than ignored.
//
// # Validation
//
// Validate collects every failed rule into a ValidationError. Only the
// section of the selected storage backend is checked, so a config may carry
// settings for backends it does not use.
//
// There is no process-wide instance: the command loads a Config once and
// passes the relevant sections to each constructor.
package config
