// Package metrics provides Prometheus metrics for exports and the artifact
// store.
//
// # Metrics
//
//   - tabula_exports_total{format,status}
//   - tabula_export_failures_total{format,kind}
//   - tabula_export_duration_seconds{format}
//   - tabula_export_size_bytes{format}
//   - tabula_export_rows_total{format}
//   - tabula_store_operations_total{operation,status}
//   - tabula_store_operation_duration_seconds{operation}
//   - tabula_store_pruned_versions_total
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordExport("xlsx", metrics.StatusSuccess, 40*time.Millisecond, 120, 8192)
//
//	mux := http.NewServeMux()
//	mux.Handle("/metrics", collector.Handler())
//
// Each collector owns its registry, so tests can create as many as they need.
package metrics
