package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	jobmetrics "github.com/bsc-scorecard/scorecard/internal/jobs"
	"github.com/bsc-scorecard/scorecard/internal/scorecard"
)

// Metrics collects the Prometheus metrics of the application.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	riskScore       *prometheus.GaugeVec
	perspective     *prometheus.GaugeVec
	priority        *prometheus.GaugeVec
	uploads         *prometheus.CounterVec
	jobs            *jobmetrics.Metrics
}

// NewMetrics initialises the registry with the HTTP, scorecard and job metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scorecard_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scorecard_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	risk := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scorecard_perspective_risk_score",
		Help: "Heuristic risk score per perspective for the current epoch.",
	}, []string{"perspective"})
	score := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scorecard_perspective_score_percent",
		Help: "Unweighted KPI compliance per perspective, in percent.",
	}, []string{"perspective"})
	priority := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scorecard_perspective_priority",
		Help: "1 when the perspective carries the highest risk score.",
	}, []string{"perspective"})
	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scorecard_uploads_total",
		Help: "Spreadsheet uploads by outcome.",
	}, []string{"status"})
	registry.MustRegister(requests, duration, risk, score, priority, uploads)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		riskScore:       risk,
		perspective:     score,
		priority:        priority,
		uploads:         uploads,
		jobs:            jobmetrics.NewMetrics(registry),
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveAnalysis publishes the per-perspective gauges.
func (m *Metrics) ObserveAnalysis(analysis []scorecard.PerspectiveAnalysis) {
	if m == nil {
		return
	}
	for _, a := range analysis {
		slug := a.Perspective.Slug()
		m.riskScore.WithLabelValues(slug).Set(a.RiskScore)
		m.perspective.WithLabelValues(slug).Set(a.Score)
		flag := 0.0
		if a.IsPriority {
			flag = 1
		}
		m.priority.WithLabelValues(slug).Set(flag)
	}
}

// ObserveUpload counts an upload attempt; status is "parsed" or "rejected".
func (m *Metrics) ObserveUpload(status string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(status).Inc()
}

// Jobs exposes the background job collectors registered on this registry.
func (m *Metrics) Jobs() *jobmetrics.Metrics {
	if m == nil {
		return nil
	}
	return m.jobs
}

// Registerer exposes the registry for custom metrics.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
