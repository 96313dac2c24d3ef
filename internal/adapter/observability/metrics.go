package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Analysis outcomes recorded by ObserveAnalysis.
const (
	OutcomeFull      = "full"
	OutcomeDegraded  = "degraded"
	OutcomeEmptyRole = "empty_role"
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

	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyses_total",
			Help: "Total number of resume analyses by outcome",
		},
		[]string{"outcome"},
	)
	AnalysisScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_score",
			Help:    "Distribution of final ATS scores ([0,100])",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)
	AnalysisMatchRatio = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_match_ratio",
			Help:    "Distribution of keyword match ratio (normalized fraction [0,1])",
			Buckets: []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Total number of LLM enrichment requests by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)
	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "LLM request duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"provider"},
	)

	KeywordCacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyword_cache_requests_total",
			Help: "Keyword cache lookups by result",
		},
		[]string{"result"},
	)
)

var registerOnce sync.Once

// InitMetrics registers all collectors with the default registry. Safe to
// call more than once.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			AnalysesTotal,
			AnalysisScore,
			AnalysisMatchRatio,
			LLMRequestsTotal,
			LLMRequestDuration,
			KeywordCacheRequestsTotal,
		)
	})
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
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}

// ObserveAnalysis records one finished analysis. Score and ratio are only
// observed for full analyses; degraded and empty-role reports are always 0.
func ObserveAnalysis(outcome string, score int, matchRatio float64) {
	AnalysesTotal.WithLabelValues(outcome).Inc()
	if outcome != OutcomeFull {
		return
	}
	if score >= 0 && score <= 100 {
		AnalysisScore.Observe(float64(score))
	}
	if matchRatio >= 0 && matchRatio <= 1 {
		AnalysisMatchRatio.Observe(matchRatio)
	}
}

// ObserveLLM records an enrichment call. outcome is "success" or a short
// failure reason such as "timeout", "circuit_open" or "invalid".
func ObserveLLM(provider, outcome string, d time.Duration) {
	LLMRequestsTotal.WithLabelValues(provider, outcome).Inc()
	LLMRequestDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveCacheLookup records a keyword cache lookup: "hit", "miss" or "error".
func ObserveCacheLookup(result string) {
	KeywordCacheRequestsTotal.WithLabelValues(result).Inc()
}
