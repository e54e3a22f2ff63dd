package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ProviderMetrics records outbound delivery provider calls.
type ProviderMetrics struct {
	duration *prometheus.HistogramVec
	calls    *prometheus.CounterVec
}

func NewProviderMetrics(reg prometheus.Registerer) *ProviderMetrics {
	if reg == nil {
		return &ProviderMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_call_duration_seconds",
		Help:      "Duration of delivery provider calls in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_calls_total",
		Help:      "Delivery provider calls by operation and outcome.",
	}, []string{"operation", "outcome"})
	reg.MustRegister(duration, calls)
	return &ProviderMetrics{duration: duration, calls: calls}
}

// Observe records one call. outcome is one of success, rejected, not_found, unavailable.
func (m *ProviderMetrics) Observe(operation, outcome string, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(elapsed.Seconds())
	m.calls.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}
