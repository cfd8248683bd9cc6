package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec
	authLoginTotal     *prometheus.CounterVec
	directoryMutations *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors exposed on /metrics.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "udata_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "udata_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "udata_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		authLoginTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "udata_auth_login_total",
			Help: "Login attempts partitioned by outcome.",
		}, []string{"outcome"})

		directoryMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "udata_directory_mutations_total",
			Help: "Committed directory mutations partitioned by entity and action.",
		}, []string{"entity", "action"})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, httpErrorsTotal, authLoginTotal, directoryMutations)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the error response counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// AuthLogins exposes the login outcome counter.
func AuthLogins() *prometheus.CounterVec {
	RegisterMetrics()
	return authLoginTotal
}

// DirectoryMutations exposes the mutation counter.
func DirectoryMutations() *prometheus.CounterVec {
	RegisterMetrics()
	return directoryMutations
}
