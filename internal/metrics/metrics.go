// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestCounter counts HTTP requests by status code, method, and route
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsweek_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"status", "method", "path"},
	)

	// RequestDuration measures HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sportsweek_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status", "method", "path"},
	)

	// RequestInProgress counts HTTP requests currently being processed
	RequestInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sportsweek_http_requests_in_progress",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// PointsOperations counts scoring operations by kind and outcome.
	PointsOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsweek_points_operations_total",
			Help: "Points calculations, applications and recomputes by outcome",
		},
		[]string{"operation", "outcome"},
	)

	// PointsAwarded sums the points credited to faculties.
	PointsAwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sportsweek_points_awarded_total",
			Help: "Total points credited to faculties",
		},
	)

	// PointsOperationDuration measures scoring operation latency.
	PointsOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sportsweek_points_operation_duration_seconds",
			Help:    "Points operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// RealtimeClients tracks connected websocket subscribers.
	RealtimeClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sportsweek_realtime_clients",
			Help: "Number of connected realtime subscribers",
		},
	)

	// RealtimeDropped counts events dropped for slow subscribers.
	RealtimeDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sportsweek_realtime_dropped_total",
			Help: "Events dropped because a subscriber buffer was full",
		},
	)
)

// RecordPointsOperation records the outcome and duration of a scoring operation.
func RecordPointsOperation(operation, outcome string, startTime time.Time) {
	PointsOperations.WithLabelValues(operation, outcome).Inc()
	PointsOperationDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
}

// Middleware collects HTTP request metrics labelled by route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RequestInProgress.Inc()
		defer RequestInProgress.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		code := strconv.Itoa(status)

		RequestCounter.WithLabelValues(code, r.Method, path).Inc()
		RequestDuration.WithLabelValues(code, r.Method, path).Observe(time.Since(start).Seconds())
	})
}
