package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Refresh outcomes.
const (
	OutcomeDone           = "done"
	OutcomeTransport      = "transport"
	OutcomeHTTPStatus     = "http_status"
	OutcomeMalformed      = "malformed"
	OutcomeQuery          = "query"
	OutcomeStorage        = "storage"
	OutcomeCircuitOpen    = "circuit_open"
	OutcomeContextExpired = "canceled"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Refresh cycle metrics
	RefreshTotal  *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	Rows          *prometheus.GaugeVec

	// Override metrics
	OverrideToggles *prometheus.CounterVec
	OverrideClears  prometheus.Counter

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time
}

// NewMetrics creates a metrics collector on its own registry so that
// several instances (one per test, one per host) never collide.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switchboard_http_requests_total",
				Help: "Total number of HTTP requests served by the host",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "switchboard_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		RefreshTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switchboard_refresh_total",
				Help: "Refresh cycles by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "switchboard_fetch_duration_seconds",
				Help:    "Experiment configuration fetch duration in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"outcome"},
		),
		Rows: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "switchboard_rows",
				Help: "Rows written by the most recent sync per dataset",
			},
			[]string{"dataset"},
		),

		OverrideToggles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "switchboard_override_toggles_total",
				Help: "Overrides set from the experiments page, by new state",
			},
			[]string{"state"},
		),
		OverrideClears: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "switchboard_override_clears_total",
				Help: "Overrides cleared on teardown",
			},
		),
	}

	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "switchboard_uptime_seconds",
			Help: "Host uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request served by the host.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRefresh records the outcome of one refresh cycle.
func (m *Metrics) RecordRefresh(mode, outcome string) {
	if m == nil {
		return
	}
	m.RefreshTotal.WithLabelValues(mode, outcome).Inc()
}

// RecordFetch records a configuration fetch.
func (m *Metrics) RecordFetch(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// SetRows records how many rows the last sync wrote to a dataset.
func (m *Metrics) SetRows(dataset string, count int) {
	if m == nil {
		return
	}
	m.Rows.WithLabelValues(dataset).Set(float64(count))
}

// RecordToggle records an override set from the page.
func (m *Metrics) RecordToggle(enabled bool) {
	if m == nil {
		return
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	m.OverrideToggles.WithLabelValues(state).Inc()
}

// RecordClear records an override cleared during teardown.
func (m *Metrics) RecordClear() {
	if m == nil {
		return
	}
	m.OverrideClears.Inc()
}
