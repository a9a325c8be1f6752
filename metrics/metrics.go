// Package metrics holds the Prometheus collectors of the routing pipeline.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Route outcomes.
const (
	OutcomeAgent       = "agent"
	OutcomeMultiIntent = "multi_intent"
	OutcomeUnclear     = "unclear"
	OutcomeError       = "error"
)

// Tool call statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics bundles the route, capability and model collectors. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	RoutesTotal       *prometheus.CounterVec
	ToolCallsTotal    *prometheus.CounterVec
	ToolDuration      *prometheus.HistogramVec
	ModelCallDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. A nil reg skips
// registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RoutesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agenthub",
				Subsystem: "supervisor",
				Name:      "routes_total",
				Help:      "Total routed messages by outcome",
			},
			[]string{"outcome"},
		),
		ToolCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agenthub",
				Subsystem: "agent",
				Name:      "tool_calls_total",
				Help:      "Total capability invocations",
			},
			[]string{"tool_name", "status"},
		),
		ToolDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "agenthub",
				Subsystem: "agent",
				Name:      "tool_duration_seconds",
				Help:      "Capability execution duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"tool_name"},
		),
		ModelCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "agenthub",
				Subsystem: "model",
				Name:      "call_duration_seconds",
				Help:      "Model call duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage", "status"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.RoutesTotal, m.ToolCallsTotal, m.ToolDuration, m.ModelCallDuration)
	}

	return m
}

// RecordRoute counts one routed message.
func (m *Metrics) RecordRoute(outcome string) {
	if m == nil {
		return
	}
	m.RoutesTotal.WithLabelValues(outcome).Inc()
}

// RecordToolCall counts one capability invocation and observes its duration.
func (m *Metrics) RecordToolCall(toolName string, dur time.Duration, err error) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.ToolCallsTotal.WithLabelValues(toolName, status).Inc()
	m.ToolDuration.WithLabelValues(toolName).Observe(dur.Seconds())
}

// RecordModelCall observes one model call of a pipeline stage
// (classify, extract, complete).
func (m *Metrics) RecordModelCall(stage string, dur time.Duration, err error) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.ModelCallDuration.WithLabelValues(stage, status).Observe(dur.Seconds())
}
