// Package metrics exposes Prometheus instrumentation for the aggregation
// layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Provider request outcomes.
const (
	StatusOK          = "ok"
	StatusError       = "error"
	StatusRateLimited = "rate_limited"
)

type Metrics struct {
	registry *prometheus.Registry

	SearchesTotal    prometheus.Counter
	SearchDuration   prometheus.Histogram
	ProviderRequests *prometheus.CounterVec
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
}

// New builds and registers all collectors on a private registry, so tests can
// construct fresh instances without double-registration panics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		SearchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventscout",
			Name:      "searches_total",
			Help:      "Number of aggregated searches served",
		}),
		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "eventscout",
			Name:      "search_duration_seconds",
			Help:      "End-to-end aggregated search latency",
			Buckets:   prometheus.DefBuckets,
		}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventscout",
			Name:      "provider_requests_total",
			Help:      "Provider requests by provider and outcome",
		}, []string{"provider", "status"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventscout",
			Name:      "cache_hits_total",
			Help:      "Aggregated-result cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventscout",
			Name:      "cache_misses_total",
			Help:      "Aggregated-result cache misses",
		}),
	}
	reg.MustRegister(m.SearchesTotal, m.SearchDuration, m.ProviderRequests, m.CacheHits, m.CacheMisses)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
