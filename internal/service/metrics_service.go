package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the portal.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	rolloverTotal   *prometheus.CounterVec
	restoreTotal    *prometheus.CounterVec
	archiveViews    prometheus.Gauge
}

// NewMetricsService registers the portal's Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	rolloverTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "term_rollovers_total",
		Help: "Term rollover executions by outcome",
	}, []string{"outcome"})

	restoreTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "permanent_restores_total",
		Help: "Permanent restore executions by outcome",
	}, []string{"outcome"})

	archiveViews := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "archive_view_bindings",
		Help: "Sessions currently bound to an archived term",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, rolloverTotal, restoreTotal, archiveViews, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		rolloverTotal:   rolloverTotal,
		restoreTotal:    restoreTotal,
		archiveViews:    archiveViews,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordRollover counts one rollover execution outcome.
func (m *MetricsService) RecordRollover(outcome string) {
	if m == nil {
		return
	}
	m.rolloverTotal.WithLabelValues(outcome).Inc()
}

// RecordRestore counts one permanent restore execution outcome.
func (m *MetricsService) RecordRestore(outcome string) {
	if m == nil {
		return
	}
	m.restoreTotal.WithLabelValues(outcome).Inc()
}

// ArchiveViewBound tracks sessions entering and leaving archive view.
func (m *MetricsService) ArchiveViewBound(delta float64) {
	if m == nil {
		return
	}
	m.archiveViews.Add(delta)
}
