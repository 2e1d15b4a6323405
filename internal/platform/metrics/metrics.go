// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is a private registry plus the collectors the service records into.
type Metrics struct {
	registry *prometheus.Registry

	Requests      *prometheus.CounterVec
	LatencyMS     *prometheus.HistogramVec
	Reservations  *prometheus.CounterVec
	ClockEvents   *prometheus.CounterVec
	Registrations *prometheus.CounterVec
	GateEvents    *prometheus.CounterVec
}

// New registers every collector in a fresh registry.
func New(service string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: service,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "method", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "frontdesk",
			Subsystem: service,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"route"}),
		Reservations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Name:      "reservations_total",
			Help:      "Reservation lifecycle transitions by kind and status.",
		}, []string{"kind", "status"}),
		ClockEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Name:      "attendance_clock_events_total",
			Help:      "Clock-in and clock-out actions recorded.",
		}, []string{"action"}),
		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Name:      "registrations_total",
			Help:      "Persons registered by role.",
		}, []string{"role"}),
		GateEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Name:      "gate_events_total",
			Help:      "Parking gate events consumed by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Requests, m.LatencyMS, m.Reservations, m.ClockEvents, m.Registrations, m.GateEvents,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveReservation counts a reservation reaching status. Nil-safe.
func (m *Metrics) ObserveReservation(kind, status string) {
	if m == nil {
		return
	}
	m.Reservations.WithLabelValues(kind, status).Inc()
}

// ObserveClock counts a clock action. Nil-safe.
func (m *Metrics) ObserveClock(action string) {
	if m == nil {
		return
	}
	m.ClockEvents.WithLabelValues(action).Inc()
}

// ObserveRegistration counts a new person by role. Nil-safe.
func (m *Metrics) ObserveRegistration(role string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(role).Inc()
}

// ObserveGateEvent counts a consumed gate event by outcome. Nil-safe.
func (m *Metrics) ObserveGateEvent(outcome string) {
	if m == nil {
		return
	}
	m.GateEvents.WithLabelValues(outcome).Inc()
}
