package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := NewMetrics()

	m.CacheHit("rates")
	m.CacheHit("rates")
	m.CacheMiss("currency_list")
	m.RemoteFetch("rates", nil)
	m.RemoteFetch("rates", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("rates")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("currency_list")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemoteFetchesTotal.WithLabelValues("rates", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemoteFetchesTotal.WithLabelValues("rates", "error")))
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CacheHit("rates")
		m.CacheMiss("rates")
		m.RemoteFetch("rates", nil)
		m.ObserveRequest("/", "GET", 200, 0.1)
	})
}

func TestHandler(t *testing.T) {
	NewMetrics()
	m := NewMetrics()
	m.ObserveRequest("/currency/rates", http.MethodGet, http.StatusOK, 0.01)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",path="/currency/rates",status_code="200"} 1`)
}
