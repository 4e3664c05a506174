package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeUnknown = "unknown"
	OutcomeInvalid = "invalid"
	OutcomePanic   = "panic"
	OutcomeFailure = "failure"
)

// Metrics groups the collectors recorded by the client.
type Metrics struct {
	Commands        *prometheus.CounterVec
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	HistoryEntries  prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is convenient in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "responsio_commands_total",
				Help: "Total number of dispatched commands by outcome",
			},
			[]string{"command", "outcome"},
		),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "responsio_requests_total",
				Help: "Total number of requests to the chat service by outcome",
			},
			[]string{"method", "outcome"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "responsio_request_duration_seconds",
				Help:    "Duration of requests to the chat service",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		HistoryEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "responsio_history_entries",
				Help: "Number of fragments in the conversation history",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Commands, m.Requests, m.RequestDuration, m.HistoryEntries)
	}
	return m
}

// ObserveCommand counts one dispatched command.
func (m *Metrics) ObserveCommand(command, outcome string) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(command, outcome).Inc()
}

// ObserveRequest counts one request and records its duration.
func (m *Metrics) ObserveRequest(method string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if !ok {
		outcome = OutcomeFailure
	}
	m.Requests.WithLabelValues(method, outcome).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// SetHistoryEntries records the current history length.
func (m *Metrics) SetHistoryEntries(n int) {
	if m == nil {
		return
	}
	m.HistoryEntries.Set(float64(n))
}
