// Package metrics provides Prometheus metrics for the dashboard service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics of the service. A nil *Metrics records nothing.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	UpstreamErrors  *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec
	CardsReduced    prometheus.Gauge
	EventsFetched   prometheus.Gauge

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_requests_total",
				Help: "Total number of dashboard requests by route and status.",
			},
			[]string{"route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashboard_request_duration_seconds",
				Help:    "Request processing duration by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		UpstreamErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_upstream_errors_total",
				Help: "Upstream fetch failures by stage.",
			},
			[]string{"stage"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_cache_lookups_total",
				Help: "Window cache lookups by result.",
			},
			[]string{"result"},
		),
		CardsReduced: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dashboard_cards_reduced",
				Help: "Number of cards reconstructed by the last window computation.",
			},
		),
		EventsFetched: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dashboard_events_fetched",
				Help: "Number of events replayed by the last window computation.",
			},
		),
		registry: reg,
	}

	reg.MustRegister(m.RequestsTotal)
	reg.MustRegister(m.RequestDuration)
	reg.MustRegister(m.UpstreamErrors)
	reg.MustRegister(m.CacheLookups)
	reg.MustRegister(m.CardsReduced)
	reg.MustRegister(m.EventsFetched)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest counts a finished request and observes its duration.
func (m *Metrics) RecordRequest(route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, status).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// RecordUpstreamError counts a failed upstream stage (events, lists, details, current).
func (m *Metrics) RecordUpstreamError(stage string) {
	if m == nil {
		return
	}
	m.UpstreamErrors.WithLabelValues(stage).Inc()
}

// RecordCache counts a cache hit or miss.
func (m *Metrics) RecordCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// RecordComputation stores the size of the last window computation.
func (m *Metrics) RecordComputation(events, cards int) {
	if m == nil {
		return
	}
	m.EventsFetched.Set(float64(events))
	m.CardsReduced.Set(float64(cards))
}
