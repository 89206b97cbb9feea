package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabq_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tabq_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	// QueriesTotal counts executed queries by mode and outcome.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabq_queries_total",
			Help: "Total number of executed queries",
		},
		[]string{"mode", "status"},
	)
	// QueryOutputRows is the number of rows returned per query.
	QueryOutputRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tabq_query_output_rows",
			Help:    "Rows returned per query",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)
	// CatalogReloads counts scheduled catalog reloads by outcome.
	CatalogReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabq_catalog_reloads_total",
			Help: "Total number of scheduled catalog reloads",
		},
		[]string{"status"},
	)
)

// ObserveQuery records one query. mode is empty when the request failed
// before planning.
func ObserveQuery(mode string, rows int, err error) {
	if mode == "" {
		mode = "unknown"
	}
	if err != nil {
		QueriesTotal.WithLabelValues(mode, "error").Inc()
		return
	}
	QueriesTotal.WithLabelValues(mode, "ok").Inc()
	QueryOutputRows.Observe(float64(rows))
}

// ObserveReload records the outcome of a scheduled catalog reload.
func ObserveReload(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	CatalogReloads.WithLabelValues(status).Inc()
}

// Handler returns the Prometheus HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
