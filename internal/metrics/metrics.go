// Package metrics exposes dashboard counters and gauges to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ukydev/fleet-dashboard/internal/models"
)

// Namespace prefixes every metric name.
const Namespace = "fleet_dashboard"

// Registry owns a private Prometheus registry and the dashboard metrics.
// A nil *Registry records nothing.
type Registry struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	exportsTotal    *prometheus.CounterVec
	notifications   *prometheus.GaugeVec
	callsTotal      *prometheus.CounterVec
	emailsSent      prometheus.Counter
}

// New creates a registry with the Go and process collectors attached.
func New() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		exportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "exports_total",
			Help:      "Generated reports by report type and format.",
		}, []string{"report", "format"}),
		notifications: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "notifications",
			Help:      "Notifications in the latest derivation by type.",
		}, []string{"type"}),
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "calls_total",
			Help:      "Simulated calls by outcome.",
		}, []string{"outcome"}),
		emailsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "emails_sent_total",
			Help:      "Simulated emails sent.",
		}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.requestsTotal,
		r.requestDuration,
		r.exportsTotal,
		r.notifications,
		r.callsTotal,
		r.emailsSent,
	)
	return r
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveRequest records one served HTTP request.
func (r *Registry) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.requestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	r.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordExport counts a generated report.
func (r *Registry) RecordExport(report, format string) {
	if r == nil {
		return
	}
	r.exportsTotal.WithLabelValues(report, format).Inc()
}

// SetNotifications replaces the per-type notification gauges.
func (r *Registry) SetNotifications(ns []models.Notification) {
	if r == nil {
		return
	}
	counts := map[models.NotificationType]int{
		models.NotificationCritical: 0,
		models.NotificationWarning:  0,
		models.NotificationInfo:     0,
		models.NotificationSuccess:  0,
	}
	for _, n := range ns {
		counts[n.Type]++
	}
	for t, c := range counts {
		r.notifications.WithLabelValues(string(t)).Set(float64(c))
	}
}

// RecordCall counts a call outcome: started, completed or cancelled.
func (r *Registry) RecordCall(outcome string) {
	if r == nil {
		return
	}
	r.callsTotal.WithLabelValues(outcome).Inc()
}

// RecordEmailSent counts a sent email.
func (r *Registry) RecordEmailSent() {
	if r == nil {
		return
	}
	r.emailsSent.Inc()
}
