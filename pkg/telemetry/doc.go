// Package telemetry groups the observability packages used by tabula.
//
//   - logging: slog setup with credential redaction and export context fields
//   - metrics: Prometheus export and store metrics
//   - tracing: OpenTelemetry spans for exports
//   - health: liveness and readiness endpoints
//
// cmd/tabula wires them from the telemetry section of the config; library
// packages only ever see the resulting *metrics.Collector, *tracing.Tracer,
// or the slog default logger.
package telemetry
