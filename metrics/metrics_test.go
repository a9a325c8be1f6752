package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordRoute(OutcomeAgent)
	m.RecordRoute(OutcomeAgent)
	m.RecordRoute(OutcomeUnclear)
	m.RecordToolCall("get_balance", 20*time.Millisecond, nil)
	m.RecordToolCall("get_balance", 5*time.Millisecond, errors.New("boom"))
	m.RecordModelCall("classify", time.Millisecond, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RoutesTotal.WithLabelValues(OutcomeAgent)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoutesTotal.WithLabelValues(OutcomeUnclear)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCallsTotal.WithLabelValues("get_balance", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCallsTotal.WithLabelValues("get_balance", StatusError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ToolDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ModelCallDuration))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRoute(OutcomeError)
		m.RecordToolCall("x", time.Second, nil)
		m.RecordModelCall("complete", time.Second, nil)
	})
}

func TestNew_NilRegisterer(t *testing.T) {
	assert.NotPanics(t, func() {
		New(nil).RecordRoute(OutcomeAgent)
	})
}
