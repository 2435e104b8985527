package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves the collector's registry in the Prometheus and OpenMetrics
// exposition formats. Scrapes are counted in promhttp_metric_handler_*
// series on the same registry. A broken collector yields partial output
// rather than a failed scrape.
//
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
func (c *Collector) Handler() http.Handler {
	opts := promhttp.HandlerOpts{
		Registry:          c.registry,
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	}
	return promhttp.InstrumentMetricHandler(c.registry, promhttp.HandlerFor(c.registry, opts))
}
