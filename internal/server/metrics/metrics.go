// Package metrics declares the server's Prometheus collectors. They are
// registered on the default registry and exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chipsgifs"

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern, method and status code.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	// Deliveries counts /api/deliver outcomes by source
	// (object-store, static, remote, not_found, error).
	Deliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gif_deliveries_total",
		Help:      "GIF deliveries by serving source or failure.",
	}, []string{"source"})

	CounterIncrements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "download_counter_increments_total",
		Help:      "Download counter increments by result.",
	}, []string{"result"})

	// GeoLookups counts resolutions by location source
	// (cache, api, disabled, failed).
	GeoLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "geo_lookups_total",
		Help:      "IP geolocation resolutions by source.",
	}, []string{"source"})

	TelemetryTasks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "telemetry_tasks_total",
		Help:      "Best-effort analytics writes by task and result.",
	}, []string{"task", "result"})
)

// Result turns an error into a "ok"/"error" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
