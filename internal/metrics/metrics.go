// Package metrics exposes Prometheus collectors for backend calls, page
// decisions and web requests.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bizdir"

// Metrics holds the collectors of one process. It implements
// apiclient.Observer.
type Metrics struct {
	Registry *prometheus.Registry

	backendCalls    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	decisions       *prometheus.CounterVec
	httpInFlight    prometheus.Gauge
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	rateLimited     prometheus.Counter
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		backendCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "backend",
				Name:      "requests_total",
				Help:      "Total number of backend API calls by operation and status.",
			},
			[]string{"op", "method", "status"},
		),
		backendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "backend",
				Name:      "request_duration_seconds",
				Help:      "Duration of backend API calls.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
			},
			[]string{"op"},
		),
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "guard",
				Name:      "decisions_total",
				Help:      "Route guard decisions by route and kind.",
			},
			[]string{"route", "kind"},
		),
		httpInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "inflight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"method", "route"},
		),
		rateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "rate_limited_total",
				Help:      "Form submissions rejected by the per-visitor rate limiter.",
			},
		),
	}
	m.Registry.MustRegister(
		m.backendCalls,
		m.backendDuration,
		m.decisions,
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.rateLimited,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler returns an HTTP handler exposing the registered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveCall records one backend call. Status 0 means no reply arrived.
func (m *Metrics) ObserveCall(op, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.backendCalls.WithLabelValues(op, strings.ToUpper(method), label).Inc()
	m.backendDuration.WithLabelValues(op).Observe(d.Seconds())
}

// RecordDecision counts one guard decision.
func (m *Metrics) RecordDecision(route, kind string) {
	if m == nil {
		return
	}
	if route == "" {
		route = "none"
	}
	m.decisions.WithLabelValues(route, kind).Inc()
}

// RecordRateLimited counts one rejected form submission.
func (m *Metrics) RecordRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// InstrumentHandler wraps next with HTTP metrics collection. routeOf maps
// a request to a low-cardinality route label.
func (m *Metrics) InstrumentHandler(routeOf func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			m.httpInFlight.Inc()
			defer m.httpInFlight.Dec()

			next.ServeHTTP(rec, r)

			route := routeOf(r)
			method := strings.ToUpper(r.Method)
			m.httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
			m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
