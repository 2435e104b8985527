package metrics

import (
	"time"

	"mercator-hq/tabula/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Collector owns the Prometheus registry and the export and store metric
// families. A disabled collector accepts every call and records nothing.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	exportMetrics *ExportMetrics
	storeMetrics  *StoreMetrics
}

// NewCollector creates a collector and registers its metrics. If registry is
// nil a fresh registry is used.
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	exporter := export.NewExporter(store, export.WithMetrics(collector))
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg == nil {
		cfg = &config.MetricsConfig{Enabled: true}
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "tabula"
	}
	if len(cfg.DurationBuckets) == 0 {
		// Exports are local rendering plus one store round trip.
		cfg.DurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
	}

	return &Collector{
		config:        cfg,
		registry:      registry,
		exportMetrics: NewExportMetrics(cfg, registry),
		storeMetrics:  NewStoreMetrics(cfg, registry),
	}
}

// RecordExport records a finished export call.
//
// Parameters:
//   - format: Output format ("xlsx", "csv", "json")
//   - status: StatusSuccess or StatusError
//   - duration: Total export duration
//   - rows: Number of data rows written (0 on failure)
//   - sizeBytes: Rendered artifact size (0 on failure)
func (c *Collector) RecordExport(format, status string, duration time.Duration, rows, sizeBytes int) {
	if !c.config.Enabled {
		return
	}

	c.exportMetrics.RecordExport(format, status, duration, rows, sizeBytes)
}

// RecordExportFailure records a failed export by error kind.
func (c *Collector) RecordExportFailure(format, kind string) {
	if !c.config.Enabled {
		return
	}

	c.exportMetrics.RecordFailure(format, kind)
}

// RecordStoreOperation records one artifact store call.
//
// Parameters:
//   - operation: Store method ("save", "list", "load", "versions", "prune")
//   - status: StatusSuccess or StatusError
//   - duration: Call duration
func (c *Collector) RecordStoreOperation(operation, status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.storeMetrics.RecordOperation(operation, status, duration)
}

// RecordPruned records versions removed by retention.
func (c *Collector) RecordPruned(count int64) {
	if !c.config.Enabled {
		return
	}

	c.storeMetrics.RecordPruned(count)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
