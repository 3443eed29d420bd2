// Package observability holds the Prometheus instrumentation for the API.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the service.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec   // labels: method, path, status
	RequestDuration *prometheus.HistogramVec // labels: method, path
	ForecastFetches *prometheus.CounterVec   // labels: outcome={success,error,no_credentials}
}

// NewMetrics creates and registers all metrics with the default registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.HTTPRequests,
		m.RequestDuration,
		m.ForecastFetches,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests
// can construct as many instances as they like without "already registered"
// panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "surfspots",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern, and status code.",
		}, []string{"method", "path", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "surfspots",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by method and route pattern.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "path"}),
		ForecastFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "surfspots",
			Name:      "forecast_fetch_total",
			Help:      "Forecast provider calls by outcome.",
		}, []string{"outcome"}),
	}
}
