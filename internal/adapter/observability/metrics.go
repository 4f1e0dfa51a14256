package observability

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider and operation",
		},
		[]string{"provider", "operation"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"provider", "operation"},
	)

	MatchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_requests_total",
			Help: "Total number of match requests by operation and candidate mode",
		},
		[]string{"operation", "mode"},
	)
	MatchCandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_candidates_total",
			Help: "Candidates processed by outcome",
		},
		[]string{"outcome"},
	)
	MatchPartialResultsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "match_partial_results_total",
			Help: "Match requests that hit the deadline and returned partial results",
		},
	)
	MatchScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_overall_score",
			Help:    "Distribution of overall match scores ([0,100])",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)
	MatchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_cache_total",
			Help: "Match score cache lookups by result",
		},
		[]string{"result"},
	)

	JobsIndexedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobs_indexed_total",
			Help: "Job postings processed by the indexer by result",
		},
		[]string{"result"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
		[]string{"name"},
	)
)

func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(AIRequestsTotal)
	prometheus.MustRegister(AIRequestDuration)
	prometheus.MustRegister(MatchRequestsTotal)
	prometheus.MustRegister(MatchCandidatesTotal)
	prometheus.MustRegister(MatchPartialResultsTotal)
	prometheus.MustRegister(MatchScoreHistogram)
	prometheus.MustRegister(MatchCacheTotal)
	prometheus.MustRegister(JobsIndexedTotal)
	prometheus.MustRegister(CircuitBreakerState)
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}

// RecordMatchRequest counts a match request; mode is "semantic", "degraded" or "explicit".
func RecordMatchRequest(operation, mode string) {
	MatchRequestsTotal.WithLabelValues(operation, mode).Inc()
}

// RecordCandidates counts scored and skipped candidates of one request.
func RecordCandidates(scored, skipped int) {
	if scored > 0 {
		MatchCandidatesTotal.WithLabelValues("scored").Add(float64(scored))
	}
	if skipped > 0 {
		MatchCandidatesTotal.WithLabelValues("skipped").Add(float64(skipped))
	}
}

// RecordPartialResult counts a request cut short by its deadline.
func RecordPartialResult() { MatchPartialResultsTotal.Inc() }

// ObserveMatchScore records an overall score.
func ObserveMatchScore(score int) {
	if score >= 0 && score <= 100 {
		MatchScoreHistogram.Observe(float64(score))
	}
}

// RecordCacheLookup counts a cache "hit", "miss" or "error".
func RecordCacheLookup(result string) { MatchCacheTotal.WithLabelValues(result).Inc() }

// RecordJobIndexed counts an indexer outcome.
func RecordJobIndexed(result string) { JobsIndexedTotal.WithLabelValues(result).Inc() }

// RecordCircuitBreakerStatus publishes a breaker state.
func RecordCircuitBreakerStatus(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
