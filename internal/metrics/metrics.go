// Package metrics exposes Prometheus collectors for the analysis pipeline and
// the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder groups the collectors. A nil *Recorder records nothing.
type Recorder struct {
	analyses      *prometheus.CounterVec
	fallbacks     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	depthResults  *prometheus.CounterVec
	scores        *prometheus.HistogramVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resume_analyses_total",
				Help: "Total number of resume analyses by method",
			},
			[]string{"method"},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resume_analysis_fallbacks_total",
				Help: "Total number of transitions to the rule-based analyzer by reason",
			},
			[]string{"reason"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "resume_analysis_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: []float64{0.005, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"stage"},
		),
		depthResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "resume_depth_analyses_total",
				Help: "Total number of depth enrichment results by outcome",
			},
			[]string{"outcome"},
		),
		scores: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "resume_analysis_score",
				Help:    "Distribution of overall resume scores",
				Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
			[]string{"method"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"route", "method"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			r.analyses,
			r.fallbacks,
			r.stageDuration,
			r.depthResults,
			r.scores,
			r.httpRequests,
			r.httpDuration,
		)
	}

	return r
}

// Analysis records a completed analysis and its overall score.
func (r *Recorder) Analysis(method string, score int) {
	if r == nil {
		return
	}
	r.analyses.WithLabelValues(method).Inc()
	r.scores.WithLabelValues(method).Observe(float64(score))
}

// Failure records an analysis that ended with the terminal error.
func (r *Recorder) Failure(method string) {
	if r == nil {
		return
	}
	r.analyses.WithLabelValues(method).Inc()
}

// Fallback records a transition to the rule-based analyzer.
func (r *Recorder) Fallback(reason string) {
	if r == nil {
		return
	}
	r.fallbacks.WithLabelValues(reason).Inc()
}

// Stage records how long a pipeline stage took.
func (r *Recorder) Stage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// Depth records the outcome of depth enrichment.
func (r *Recorder) Depth(outcome string) {
	if r == nil {
		return
	}
	r.depthResults.WithLabelValues(outcome).Inc()
}

// Middleware records request counts and latencies per chi route pattern.
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	if r == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		var route string
		if rc := chi.RouteContext(req.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = req.URL.Path
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		r.httpRequests.WithLabelValues(route, req.Method, strconv.Itoa(status)).Inc()
		r.httpDuration.WithLabelValues(route, req.Method).Observe(time.Since(start).Seconds())
	})
}
