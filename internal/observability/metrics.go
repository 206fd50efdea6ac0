package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// volcano aggregation service.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec   // labels: source={catalog,eruptions}, outcome={success,error}
	UpstreamDuration *prometheus.HistogramVec // labels: source={catalog,eruptions}
	CacheReads       *prometheus.CounterVec   // labels: cache={catalog,eruptions}, result={hit,miss,stale}
	FallbackServed   prometheus.Counter
	FeaturesSkipped  prometheus.Counter

	ActiveEruptions prometheus.Gauge
	CatalogSize     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "volcano_api",
			Name:      "upstream_requests_total",
			Help:      "GVP upstream requests by source and outcome.",
		}, []string{"source", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "volcano_api",
			Name:      "upstream_request_duration_seconds",
			Help:      "GVP upstream request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		CacheReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "volcano_api",
			Name:      "cache_reads_total",
			Help:      "Cache lookups by cache and result (stale = fail-open read of an expired entry).",
		}, []string{"cache", "result"}),
		FallbackServed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "volcano_api",
			Name:      "fallback_served_total",
			Help:      "Times the hardcoded fallback catalog was served.",
		}),
		FeaturesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "volcano_api",
			Name:      "catalog_features_skipped_total",
			Help:      "Malformed catalog features silently excluded during mapping.",
		}),
		ActiveEruptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "volcano_api",
			Name:      "active_eruptions",
			Help:      "Continuing eruptions in the latest feed snapshot.",
		}),
		CatalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "volcano_api",
			Name:      "catalog_volcanoes",
			Help:      "Volcanoes in the latest catalog snapshot.",
		}),
	}

	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.CacheReads,
		m.FallbackServed,
		m.FeaturesSkipped,
		m.ActiveEruptions,
		m.CatalogSize,
	)

	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "volcano_api", Name: "upstream_requests_total"}, []string{"source", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "volcano_api", Name: "upstream_request_duration_seconds"}, []string{"source"}),
		CacheReads:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "volcano_api", Name: "cache_reads_total"}, []string{"cache", "result"}),
		FallbackServed:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "volcano_api", Name: "fallback_served_total"}),
		FeaturesSkipped:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "volcano_api", Name: "catalog_features_skipped_total"}),
		ActiveEruptions:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "volcano_api", Name: "active_eruptions"}),
		CatalogSize:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "volcano_api", Name: "catalog_volcanoes"}),
	}
}
