package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the registry.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	transitionTotal *prometheus.CounterVec
	eventsPublished prometheus.Counter
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

	transitionTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "registry_transitions_total",
		Help: "State transitions grouped by operation and outcome",
	}, []string{"operation", "outcome"})

	eventsPublished := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "registry_events_published_total",
		Help: "Committed events delivered to the notification channel",
	})

	registry.MustRegister(requestDuration, requestTotal, transitionTotal, eventsPublished)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		transitionTotal: transitionTotal,
		eventsPublished: eventsPublished,
	}
}

// ObserveHTTPRequest records request latency and volume.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := []string{method, path, fmt.Sprintf("%d", status)}
	m.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveTransition counts a transition attempt by outcome.
func (m *MetricsService) ObserveTransition(operation string, committed bool) {
	if m == nil {
		return
	}
	outcome := "rejected"
	if committed {
		outcome = "committed"
	}
	m.transitionTotal.WithLabelValues(operation, outcome).Inc()
}

// EventPublished counts a delivered notification.
func (m *MetricsService) EventPublished() {
	if m == nil {
		return
	}
	m.eventsPublished.Inc()
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	return m.handler
}
