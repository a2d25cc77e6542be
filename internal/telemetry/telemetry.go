// Package telemetry exposes Prometheus collectors for the console and the worker.
// A nil *Metrics is valid and records nothing.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fracc/internal/cache"
)

const namespace = "fracc"

type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	apiCalls         *prometheus.CounterVec
	apiDuration      *prometheus.HistogramVec
	screenLoads      *prometheus.CounterVec
	rateLimited      prometheus.Counter
	suspicious       *prometheus.CounterVec
	reportsPublished prometheus.Counter
	reportsProcessed *prometheus.CounterVec
}

// New registers every collector on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		apiCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_calls_total",
			Help:      "Calls to the residential API, by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		apiDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_call_duration_seconds",
			Help:      "Residential API call latency.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		screenLoads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "screen_loads_total",
			Help:      "Screen loads by screen and final state.",
		}, []string{"screen", "state"}),
		rateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the per-IP rate limiter.",
		}),
		suspicious: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suspicious_requests_total",
			Help:      "Requests flagged by the security detector.",
		}, []string{"kind"}),
		reportsPublished: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_exports_published_total",
			Help:      "Report export requests published to the broker.",
		}),
		reportsProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_exports_processed_total",
			Help:      "Report export requests handled by the worker.",
		}, []string{"outcome"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// WatchCache publishes hit, miss and size figures of a cache.
func (m *Metrics) WatchCache(name string, stats func() cache.Stats, size func() int) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{"cache": name}
	f := promauto.With(m.registry)
	f.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace, Name: "cache_hits_total", Help: "Cache hits.", ConstLabels: labels,
	}, func() float64 { return float64(stats().Hits) })
	f.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace, Name: "cache_misses_total", Help: "Cache misses.", ConstLabels: labels,
	}, func() float64 { return float64(stats().Misses) })
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace, Name: "cache_entries", Help: "Live cache entries.", ConstLabels: labels,
	}, func() float64 { return float64(size()) })
}

func (m *Metrics) ObserveHTTP(route, method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

func (m *Metrics) ObserveAPICall(endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.apiCalls.WithLabelValues(endpoint, outcome).Inc()
	m.apiDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (m *Metrics) ScreenLoaded(screen, state string) {
	if m == nil {
		return
	}
	m.screenLoads.WithLabelValues(screen, state).Inc()
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

func (m *Metrics) Suspicious(kind string) {
	if m == nil {
		return
	}
	m.suspicious.WithLabelValues(kind).Inc()
}

func (m *Metrics) ReportPublished() {
	if m == nil {
		return
	}
	m.reportsPublished.Inc()
}

func (m *Metrics) ReportProcessed(outcome string) {
	if m == nil {
		return
	}
	m.reportsProcessed.WithLabelValues(outcome).Inc()
}
