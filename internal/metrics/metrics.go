package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the launcher's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	launchesTotal     *prometheus.CounterVec
	preflightFailures *prometheus.CounterVec
	probesTotal       *prometheus.CounterVec
	serverReady       prometheus.Gauge
	serverExitCode    prometheus.Gauge
	serverExitsTotal  *prometheus.CounterVec
}

// New creates the collectors on a dedicated registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		launchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launcher_launches_total",
				Help: "Total number of server launches",
			},
			[]string{"mode"},
		),
		preflightFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launcher_preflight_failures_total",
				Help: "Total number of failed preflight steps",
			},
			[]string{"step"},
		),
		probesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launcher_health_probes_total",
				Help: "Total number of readiness probes by result",
			},
			[]string{"result"}, // healthy, unhealthy
		),
		serverReady: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "launcher_server_ready",
				Help: "1 when the launched server answers its health endpoint",
			},
		),
		serverExitCode: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "launcher_server_last_exit_code",
				Help: "Exit status of the last server process",
			},
		),
		serverExitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launcher_server_exits_total",
				Help: "Total number of server exits by status",
			},
			[]string{"code"},
		),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordLaunch counts a launch attempt.
func (m *Metrics) RecordLaunch(mode string) {
	m.launchesTotal.WithLabelValues(mode).Inc()
}

// PreflightFailed counts a failed preflight step.
func (m *Metrics) PreflightFailed(step string) {
	m.preflightFailures.WithLabelValues(step).Inc()
}

// ObserveProbe counts a readiness probe.
func (m *Metrics) ObserveProbe(healthy bool) {
	result := "unhealthy"
	if healthy {
		result = "healthy"
	}
	m.probesTotal.WithLabelValues(result).Inc()
}

// SetReady records the server readiness.
func (m *Metrics) SetReady(ready bool) {
	if ready {
		m.serverReady.Set(1)
	} else {
		m.serverReady.Set(0)
	}
}

// RecordExit records the exit status of the server.
func (m *Metrics) RecordExit(code int) {
	m.serverExitCode.Set(float64(code))
	m.serverExitsTotal.WithLabelValues(strconv.Itoa(code)).Inc()
	m.serverReady.Set(0)
}
