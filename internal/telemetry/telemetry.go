package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"diet-wizard/internal/nutrition"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	dietFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diet_fetch_total",
			Help: "Resolved diet fetches by status and error kind",
		},
		[]string{"status", "error_kind"},
	)

	dietFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "diet_fetch_duration_seconds",
			Help:    "Diet API request duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
	)

	wizardSessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wizard_sessions_started_total",
			Help: "Wizard sessions started from the first step",
		},
	)

	shareFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "diet_share_failures_total",
			Help: "Share actions that failed",
		},
	)
)

// FetchObserver exports resolved fetches to Prometheus.
type FetchObserver struct{}

// ObserveFetch implements nutrition.Observer.
func (FetchObserver) ObserveFetch(_ string, o nutrition.Outcome, latency time.Duration) {
	dietFetchTotal.WithLabelValues(o.Status.String(), o.ErrorKind()).Inc()
	dietFetchDuration.Observe(latency.Seconds())
}

// SessionStarted counts a wizard restart.
func SessionStarted() {
	wizardSessionsStarted.Inc()
}

// ShareFailed counts a failed share action.
func ShareFailed() {
	shareFailures.Inc()
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration under a fixed path label.
func Middleware(path string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)

		next(rw, r)

		httpRequestsTotal.WithLabelValues(
			r.Method,
			path,
			strconv.Itoa(rw.statusCode),
		).Inc()

		httpRequestDuration.WithLabelValues(
			r.Method,
			path,
		).Observe(time.Since(start).Seconds())
	}
}
