// Package metrics holds the Prometheus collectors for the storefront service
// and the widget.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alfredjeanlab/orgwidget/internal/widget"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// Metrics provides observability for widget evaluations, storefront lookups
// and the HTTP API.
type Metrics struct {
	registry *prometheus.Registry

	WidgetEvaluations   *prometheus.CounterVec
	LookupDuration      *prometheus.HistogramVec
	StaleLookupResults  *prometheus.CounterVec
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ActiveSessions      prometheus.Gauge
	SessionsExpired     prometheus.Counter
}

var _ widget.Metrics = (*Metrics)(nil)

// New creates a Metrics instance registered on its own registry, together
// with the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		WidgetEvaluations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "orgwidget_widget_evaluations_total",
			Help: "Widget evaluations by resulting state",
		}, []string{"state"}),
		LookupDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orgwidget_lookup_duration_seconds",
			Help:    "Duration of storefront lookups issued by the widget",
			Buckets: durationBuckets,
		}, []string{"lookup", "outcome"}),
		StaleLookupResults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "orgwidget_stale_lookup_results_total",
			Help: "Lookup results discarded because the session changed while they were in flight",
		}, []string{"lookup"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "orgwidget_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orgwidget_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: durationBuckets,
		}, []string{"route"}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "orgwidget_active_sessions",
			Help: "Sessions seen within the idle timeout",
		}),
		SessionsExpired: f.NewCounter(prometheus.CounterOpts{
			Name: "orgwidget_sessions_expired_total",
			Help: "Authenticated sessions logged out by the idle reaper",
		}),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveEvaluation counts one widget evaluation.
func (m *Metrics) ObserveEvaluation(state widget.State) {
	m.WidgetEvaluations.WithLabelValues(state.String()).Inc()
}

// ObserveLookup records how long a lookup took and how it ended.
func (m *Metrics) ObserveLookup(name, outcome string, d time.Duration) {
	m.LookupDuration.WithLabelValues(name, outcome).Observe(d.Seconds())
}

// ObserveStaleResult counts a lookup result dropped by the widget loop.
func (m *Metrics) ObserveStaleResult(name string) {
	m.StaleLookupResults.WithLabelValues(name).Inc()
}

// SetActiveSessions sets the active session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.ActiveSessions.Set(float64(n))
}

// IncrementSessionsExpired records one reaper logout.
func (m *Metrics) IncrementSessionsExpired() {
	m.SessionsExpired.Inc()
}

// Instrument wraps h so requests are counted and timed under route. Use the
// mux pattern as route to keep label cardinality bounded.
func (m *Metrics) Instrument(route string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)
		m.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// statusRecorder captures the response code. It forwards Flush so SSE
// handlers keep streaming through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
