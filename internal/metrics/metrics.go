// Package metrics provides Prometheus instrumentation for the journal service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TradesCreated counts trades recorded, partitioned by asset type.
	TradesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradecraft_trades_created_total",
		Help: "Total number of trades recorded",
	}, []string{"asset_type"})

	// LegsAppended counts fills appended to existing trades.
	LegsAppended = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradecraft_legs_appended_total",
		Help: "Total number of legs appended to trades",
	})

	// TradesDeleted counts trades removed by their owner.
	TradesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradecraft_trades_deleted_total",
		Help: "Total number of trades deleted",
	})

	// MalformedTrades counts trades excluded from analytics by validation.
	MalformedTrades = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradecraft_malformed_trades_total",
		Help: "Trades excluded from analytics as malformed",
	})

	// AnalyticsDuration tracks how long one analytics computation takes.
	AnalyticsDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tradecraft_analytics_duration_seconds",
		Help:    "Analytics computation duration in seconds",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
	}, []string{"operation"})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradecraft_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tradecraft_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// ObserveAnalytics records one analytics computation.
func ObserveAnalytics(operation string, start time.Time) {
	AnalyticsDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Middleware instruments HTTP handlers with request counters and latency.
// The path label is the matched chi route pattern, not the raw URL path;
// labelling by raw path would mint a new series per trade ID.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
