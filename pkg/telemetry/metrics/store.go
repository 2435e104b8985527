package metrics

import (
	"time"

	"mercator-hq/tabula/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics tracks artifact store calls.
//
// Metrics:
//   - tabula_store_operations_total: Store calls by operation and status
//   - tabula_store_operation_duration_seconds: Store call latency
//   - tabula_store_pruned_versions_total: Versions removed by retention
type StoreMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	prunedTotal       prometheus.Counter
}

// NewStoreMetrics creates and registers store metrics with the provided registry.
func NewStoreMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *StoreMetrics {
	sm := &StoreMetrics{
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "store_operations_total",
				Help:      "Total number of artifact store operations",
			},
			[]string{"operation", "status"},
		),

		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Duration of artifact store operations in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"operation"},
		),

		prunedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "store_pruned_versions_total",
				Help:      "Total number of artifact versions removed by retention",
			},
		),
	}

	registry.MustRegister(
		sm.operationsTotal,
		sm.operationDuration,
		sm.prunedTotal,
	)

	return sm
}

// RecordOperation records one store call.
func (sm *StoreMetrics) RecordOperation(operation, status string, duration time.Duration) {
	sm.operationsTotal.WithLabelValues(operation, status).Inc()
	sm.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordPruned records versions removed by retention.
func (sm *StoreMetrics) RecordPruned(count int64) {
	if count > 0 {
		sm.prunedTotal.Add(float64(count))
	}
}
