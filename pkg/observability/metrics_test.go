package observability_test

import (
	"testing"
	"time"

	"github.com/aretw0/responsio/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	m.ObserveCommand("text", observability.OutcomeOK)
	m.ObserveCommand("text", observability.OutcomeOK)
	m.ObserveCommand("bogus", observability.OutcomeUnknown)
	m.ObserveRequest("POST", false, 10*time.Millisecond)
	m.SetHistoryEntries(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Commands.WithLabelValues("text", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("bogus", "unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("POST", "failure")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.HistoryEntries))

	count, err := testutil.GatherAndCount(reg, "responsio_request_duration_seconds")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *observability.Metrics
	assert.NotPanics(t, func() {
		m.ObserveCommand("text", observability.OutcomeOK)
		m.ObserveRequest("GET", true, time.Second)
		m.SetHistoryEntries(1)
	})
}
