// Package metrics provides Prometheus instrumentation for stake-distributor.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Solve outcomes.
const (
	OutcomeConverged      = "converged"
	OutcomeNonConvergence = "non_convergence"
	OutcomeInvalid        = "invalid"
)

var (
	// SolvesTotal counts solver runs by rounding mode and outcome.
	SolvesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stake_solves_total",
		Help: "Total number of stake distributions computed",
	}, []string{"rounding", "outcome"})

	// SolverPasses tracks how many passes converged solves needed.
	SolverPasses = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stake_solver_passes",
		Help:    "Passes needed for a stake distribution to converge",
		Buckets: prometheus.ExponentialBuckets(1, 2, 14),
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stake_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stake_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// RecordSolve records one solver run. passes is only observed for converged runs.
func RecordSolve(rounding, outcome string, passes int) {
	SolvesTotal.WithLabelValues(rounding, outcome).Inc()
	if outcome == OutcomeConverged {
		SolverPasses.Observe(float64(passes))
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		path := routeLabel(r.URL.Path)
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routeLabel collapses unknown paths so scanners cannot blow up label cardinality.
func routeLabel(path string) string {
	switch path {
	case "/api/stakes", "/api/distribute", "/api/editor/distribute", "/api/editor/export",
		"/api/version", "/health", "/metrics":
		return path
	default:
		return "other"
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
