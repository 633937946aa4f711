// Package metrics provides Prometheus metrics collection for modhost.
package metrics

import (
	"strconv"

	"github.com/artpar/modhost/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "modhost"

// Collector holds all Prometheus metrics for modhost.
type Collector struct {
	// Request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Auth metrics
	AuthFailures *prometheus.CounterVec

	// Module metrics
	ModuleToggles  *prometheus.CounterVec
	SettingsSaves  *prometheus.CounterVec
	SanitizerDrops *prometheus.CounterVec
	ModulesActive  prometheus.Gauge

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
	ConfigLastReload   prometheus.Gauge
}

// New creates a collector registered with the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector registered with reg.
// Tests pass a fresh registry to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
		),
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_failures_total",
				Help:      "Total number of rejected write requests",
			},
			[]string{"reason"},
		),
		ModuleToggles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "module_toggles_total",
				Help:      "Total number of module enable/disable writes",
			},
			[]string{"slug", "enabled"},
		),
		SettingsSaves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "settings_saves_total",
				Help:      "Total number of module settings writes by result",
			},
			[]string{"slug", "result"},
		),
		SanitizerDrops: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sanitizer_dropped_total",
				Help:      "Total number of submitted values dropped during sanitizing",
			},
			[]string{"slug", "reason"},
		),
		ModulesActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "modules_active",
				Help:      "Number of modules in the active state",
			},
		),
		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reload_errors_total",
				Help:      "Total number of config reload errors",
			},
		),
		ConfigLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "config_last_reload_timestamp",
				Help:      "Unix timestamp of last successful config reload",
			},
		),
	}
}

// Result labels for SettingsSaves.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Toggled implements ports.SettingsMetrics.
func (c *Collector) Toggled(slug string, enabled bool) {
	c.ModuleToggles.WithLabelValues(slug, strconv.FormatBool(enabled)).Inc()
}

// Saved implements ports.SettingsMetrics.
func (c *Collector) Saved(slug string, ok bool) {
	result := ResultOK
	if !ok {
		result = ResultError
	}
	c.SettingsSaves.WithLabelValues(slug, result).Inc()
}

// Dropped implements ports.SettingsMetrics.
func (c *Collector) Dropped(slug, reason string) {
	c.SanitizerDrops.WithLabelValues(slug, reason).Inc()
}

var _ ports.SettingsMetrics = (*Collector)(nil)

// StatusClass buckets an HTTP status code into "2xx", "4xx" and so on.
func StatusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	}
	return "1xx"
}
