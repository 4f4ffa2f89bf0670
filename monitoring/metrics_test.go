package monitoring

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDashboardMetricsCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDashboardMetrics(reg)

	m.ObserveEnvelope("patients.list", true)
	m.ObserveEnvelope("patients.list", false)
	m.ObserveEnvelope("patients.list", false)
	m.ObserveFallback("appointments", "empty")
	m.ObserveRefetch("patients")
	m.ObserveHTTP("GET", "/pacientes", "200", 0.02)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.envelopes.WithLabelValues("patients.list", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.envelopes.WithLabelValues("patients.list", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks.WithLabelValues("appointments", "empty")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refetches.WithLabelValues("patients")))
}

func TestDashboardMetricsNilSafe(t *testing.T) {
	var m *DashboardMetrics
	m.ObserveEnvelope("calls.recent", true)
	m.ObserveFallback("patients", "error")
	m.ObserveRefetch("patients")
	m.ObserveHTTP("GET", "/", "302", 0.1)
}
