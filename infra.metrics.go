package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all prometheus collectors of the service. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	StoreOperationsTotal *prometheus.CounterVec
	BooksStored          prometheus.Gauge
	MirrorEventsTotal    *prometheus.CounterVec
}

// NewMetrics builds the service collectors on a dedicated registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	registerer := prometheus.WrapRegistererWith(prometheus.Labels{"service": "books"}, registry)
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry: registry,
		HTTPRequestsTotal: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: promauto.With(registerer).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		StoreOperationsTotal: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "book_store_operations_total",
				Help: "Total number of book store operations by result",
			},
			[]string{"operation", "result"},
		),
		BooksStored: promauto.With(registerer).NewGauge(
			prometheus.GaugeOpts{
				Name: "books_stored",
				Help: "Number of books currently held in memory",
			},
		),
		MirrorEventsTotal: promauto.With(registerer).NewCounterVec(
			prometheus.CounterOpts{
				Name: "mirror_events_total",
				Help: "Total number of mirror events by queue and result",
			},
			[]string{"queue", "result"},
		),
	}
}

// RecordHTTPRequest records a served request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	statusStr := statusCodeClass(status)
	m.HTTPRequestsTotal.WithLabelValues(method, route, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route, statusStr).Observe(duration.Seconds())
}

// RecordStoreOperation records the outcome of a store operation and the current books count.
func (m *Metrics) RecordStoreOperation(operation string, err error, count int) {
	if m == nil {
		return
	}
	result := "success"
	switch {
	case errors.Is(err, ErrBookNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	m.StoreOperationsTotal.WithLabelValues(operation, result).Inc()
	m.BooksStored.Set(float64(count))
}

// RecordMirrorEvent records a mirror queue push or apply outcome.
func (m *Metrics) RecordMirrorEvent(qid, result string) {
	if m == nil {
		return
	}
	m.MirrorEventsTotal.WithLabelValues(qid, result).Inc()
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// statusCodeClass converts status code to its class label.
func statusCodeClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

// catchAllPrefixes are routes serving any path below them.
var catchAllPrefixes = []string{"/swagger/", "/ops/debug/pprof/"}

// RouteLabel replaces the book id path segment and anything below a
// catch-all prefix by a placeholder to keep the route label cardinality bounded.
func RouteLabel(path string) string {
	for _, prefix := range catchAllPrefixes {
		if strings.HasPrefix(path, prefix) {
			return prefix + "*any"
		}
	}
	segments := strings.Split(path, "/")
	for i := 1; i < len(segments); i++ {
		if segments[i-1] == "books" && segments[i] != "" {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}
