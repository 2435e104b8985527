package metrics

import (
	"time"

	"mercator-hq/tabula/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ExportMetrics tracks export calls.
//
// Metrics:
//   - tabula_exports_total: Export count by format and status
//   - tabula_export_failures_total: Failed exports by format and error kind
//   - tabula_export_duration_seconds: Export duration histogram
//   - tabula_export_size_bytes: Rendered artifact size histogram
//   - tabula_export_rows_total: Data rows written
type ExportMetrics struct {
	exportsTotal   *prometheus.CounterVec
	failuresTotal  *prometheus.CounterVec
	exportDuration *prometheus.HistogramVec
	sizeBytes      *prometheus.HistogramVec
	rowsTotal      *prometheus.CounterVec
}

// NewExportMetrics creates and registers export metrics with the provided registry.
func NewExportMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ExportMetrics {
	em := &ExportMetrics{
		exportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "exports_total",
				Help:      "Total number of export calls",
			},
			[]string{"format", "status"},
		),

		failuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "export_failures_total",
				Help:      "Total number of failed exports by error kind",
			},
			[]string{"format", "kind"},
		),

		exportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "export_duration_seconds",
				Help:      "Duration of export calls in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"format"},
		),

		sizeBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "export_size_bytes",
				Help:      "Size of rendered artifacts in bytes",
				Buckets:   prometheus.ExponentialBuckets(256, 4, 10), // 256B to 64MB
			},
			[]string{"format"},
		),

		rowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "export_rows_total",
				Help:      "Total number of data rows exported",
			},
			[]string{"format"},
		),
	}

	registry.MustRegister(
		em.exportsTotal,
		em.failuresTotal,
		em.exportDuration,
		em.sizeBytes,
		em.rowsTotal,
	)

	return em
}

// RecordExport records a finished export call.
func (em *ExportMetrics) RecordExport(format, status string, duration time.Duration, rows, sizeBytes int) {
	em.exportsTotal.WithLabelValues(format, status).Inc()
	em.exportDuration.WithLabelValues(format).Observe(duration.Seconds())

	if status != StatusSuccess {
		return
	}
	if rows > 0 {
		em.rowsTotal.WithLabelValues(format).Add(float64(rows))
	}
	if sizeBytes > 0 {
		em.sizeBytes.WithLabelValues(format).Observe(float64(sizeBytes))
	}
}

// RecordFailure records a failed export by error kind.
func (em *ExportMetrics) RecordFailure(format, kind string) {
	em.failuresTotal.WithLabelValues(format, kind).Inc()
}
