// Package metrics exposes Prometheus instrumentation for the HTTP API, the AI
// provider and the CSV engine.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"onecore/internal/domain"
	"onecore/internal/port"
)

const namespace = "onecore"

// Metrics owns a private registry so tests can build as many as they like.
// All Record methods are no-ops on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	aiCallsTotal   *prometheus.CounterVec
	aiCallDuration *prometheus.HistogramVec

	csvFilesTotal       *prometheus.CounterVec
	csvValidationsTotal *prometheus.CounterVec

	documentsAnalyzedTotal *prometheus.CounterVec
}

// New creates the metric set and registers it together with the Go runtime
// and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"method", "route", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
		},
	)
	aiCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "calls_total",
			Help:      "Total AI completion calls by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
	aiCallDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "call_duration_seconds",
			Help:      "AI completion latency in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"operation"},
	)
	csvFilesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "csv",
			Name:      "files_total",
			Help:      "Total CSV files validated by result.",
		},
		[]string{"result"},
	)
	csvValidationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "csv",
			Name:      "validations_total",
			Help:      "Total CSV validation findings by type and severity.",
		},
		[]string{"type", "severity"},
	)
	documentsAnalyzedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "documents",
			Name:      "analyzed_total",
			Help:      "Total documents analyzed by resulting document type.",
		},
		[]string{"document_type"},
	)

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		requestTotal,
		requestDuration,
		requestInFlight,
		aiCallsTotal,
		aiCallDuration,
		csvFilesTotal,
		csvValidationsTotal,
		documentsAnalyzedTotal,
	)

	return &Metrics{
		registry:               registry,
		requestTotal:           requestTotal,
		requestDuration:        requestDuration,
		requestInFlight:        requestInFlight,
		aiCallsTotal:           aiCallsTotal,
		aiCallDuration:         aiCallDuration,
		csvFilesTotal:          csvFilesTotal,
		csvValidationsTotal:    csvValidationsTotal,
		documentsAnalyzedTotal: documentsAnalyzedTotal,
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per matched route. Unmatched
// paths are grouped under a single label to keep cardinality bounded.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordCSVValidation counts one validated file and each of its findings.
func (m *Metrics) RecordCSVValidation(results []domain.ValidationResult) {
	if m == nil {
		return
	}
	outcome := "accepted"
	if domain.HasErrors(results) {
		outcome = "rejected"
	}
	m.csvFilesTotal.WithLabelValues(outcome).Inc()
	for _, r := range results {
		m.csvValidationsTotal.WithLabelValues(string(r.ValidationType), string(r.Severity)).Inc()
	}
}

// RecordDocumentAnalyzed counts a finished analysis.
func (m *Metrics) RecordDocumentAnalyzed(docType domain.DocumentType) {
	if m == nil {
		return
	}
	m.documentsAnalyzedTotal.WithLabelValues(string(docType)).Inc()
}

func (m *Metrics) recordAICall(operation string, err error, elapsed time.Duration) {
	if operation == "" {
		operation = "unknown"
	}
	m.aiCallsTotal.WithLabelValues(operation, outcome(err)).Inc()
	m.aiCallDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}

type instrumentedCompleter struct {
	next    port.Completer
	metrics *Metrics
}

// InstrumentCompleter wraps next so each call is counted and timed. A nil
// completer stays nil so that disabled AI remains detectable.
func InstrumentCompleter(next port.Completer, m *Metrics) port.Completer {
	if next == nil || m == nil {
		return next
	}
	return &instrumentedCompleter{next: next, metrics: m}
}

func (c *instrumentedCompleter) Complete(ctx context.Context, req port.CompletionRequest) (string, error) {
	start := time.Now()
	text, err := c.next.Complete(ctx, req)
	c.metrics.recordAICall(req.Operation, err, time.Since(start))
	return text, err
}
