package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	CacheHitsTotal     *prometheus.CounterVec
	CacheMissesTotal   *prometheus.CounterVec
	RemoteFetchesTotal *prometheus.CounterVec
}

// NewMetrics registers all collectors on a private registry so several
// instances can coexist in one process.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Requests served from the local cache",
			},
			[]string{"category"},
		),

		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Requests that found the local cache empty or stale",
			},
			[]string{"category"},
		),

		RemoteFetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remote_fetches_total",
				Help: "Remote fetches by category and result",
			},
			[]string{"category", "result"},
		),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// The methods below are nil-safe so components can run without metrics.

func (m *Metrics) CacheHit(category string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(category).Inc()
}

func (m *Metrics) CacheMiss(category string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(category).Inc()
}

func (m *Metrics) RemoteFetch(category string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.RemoteFetchesTotal.WithLabelValues(category, result).Inc()
}

func (m *Metrics) ObserveRequest(path, method string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(path, method).Observe(seconds)
}
