package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the delivery
// pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	uploadsTotal    prometheus.Counter
	artifactsStored *prometheus.CounterVec
	emailsTotal     *prometheus.CounterVec
	storeDuration   prometheus.Observer
}

// NewMetricsService registers core Prometheus collectors.
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

	uploadsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uploads_total",
		Help: "Total number of upload requests processed",
	})

	artifactsStored := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "artifacts_stored_total",
		Help: "Total artifacts written to the remote store",
	}, []string{"kind"})

	emailsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "emails_total",
		Help: "Total notification attempts by outcome",
	}, []string{"status"})

	storeDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "store_put_duration_seconds",
		Help:    "Duration of remote store uploads",
		Buckets: prometheus.DefBuckets,
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, uploadsTotal, artifactsStored, emailsTotal, storeDuration, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		uploadsTotal:    uploadsTotal,
		artifactsStored: artifactsStored,
		emailsTotal:     emailsTotal,
		storeDuration:   storeDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordUpload counts one processed upload request.
func (m *MetricsService) RecordUpload() {
	if m == nil {
		return
	}
	m.uploadsTotal.Inc()
}

// RecordArtifactStored counts one stored artifact by kind.
func (m *MetricsService) RecordArtifactStored(kind string) {
	if m == nil {
		return
	}
	m.artifactsStored.WithLabelValues(kind).Inc()
}

// RecordEmail counts one notification attempt by outcome.
func (m *MetricsService) RecordEmail(status string) {
	if m == nil {
		return
	}
	m.emailsTotal.WithLabelValues(status).Inc()
}

// ObserveStorePut records remote store upload timing.
func (m *MetricsService) ObserveStorePut(duration time.Duration) {
	if m == nil || m.storeDuration == nil {
		return
	}
	m.storeDuration.Observe(duration.Seconds())
}
