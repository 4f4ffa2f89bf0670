package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DashboardMetrics exposes counters/histograms for data access and view state.
// A nil *DashboardMetrics is valid and records nothing.
type DashboardMetrics struct {
	envelopes   *prometheus.CounterVec
	fallbacks   *prometheus.CounterVec
	refetches   *prometheus.CounterVec
	httpLatency *prometheus.HistogramVec
}

func NewDashboardMetrics(reg prometheus.Registerer) *DashboardMetrics {
	m := &DashboardMetrics{
		envelopes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "panel",
			Subsystem: "data",
			Name:      "envelopes_total",
			Help:      "Data-access results by operation and outcome",
		}, []string{"operation", "outcome"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "panel",
			Subsystem: "view",
			Name:      "fallback_total",
			Help:      "Times sample data was shown instead of live rows",
		}, []string{"source", "reason"}),
		refetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "panel",
			Subsystem: "view",
			Name:      "realtime_refetch_total",
			Help:      "Refetches triggered by row-change events",
		}, []string{"table"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "panel",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.envelopes, m.fallbacks, m.refetches, m.httpLatency)
	return m
}

func (m *DashboardMetrics) ObserveEnvelope(operation string, success bool) {
	if m == nil {
		return
	}
	outcome := "error"
	if success {
		outcome = "success"
	}
	m.envelopes.WithLabelValues(operation, outcome).Inc()
}

// ObserveFallback records a fallback substitution. reason is "error" or "empty".
func (m *DashboardMetrics) ObserveFallback(source, reason string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(source, reason).Inc()
}

func (m *DashboardMetrics) ObserveRefetch(table string) {
	if m == nil {
		return
	}
	m.refetches.WithLabelValues(table).Inc()
}

func (m *DashboardMetrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpLatency.WithLabelValues(method, route, status).Observe(seconds)
}
