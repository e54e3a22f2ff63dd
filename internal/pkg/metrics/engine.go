package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "orderflow"

// EngineMetrics counts the outcomes of the order engine contention points.
type EngineMetrics struct {
	claims      *prometheus.CounterVec
	followups   *prometheus.CounterVec
	historyRows *prometheus.CounterVec
	withdrawals *prometheus.CounterVec
}

func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	claims := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "claims_total",
		Help:      "Agent claim attempts by outcome.",
	}, []string{"outcome"})
	followups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "followup_assignments_total",
		Help:      "Follow-up rotation decisions by outcome.",
	}, []string{"outcome"})
	historyRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "history_rows_total",
		Help:      "Audit rows written by target type.",
	}, []string{"target_type"})
	withdrawals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "provider_withdrawals_total",
		Help:      "Registrations withdrawn from the provider after a failed mutation, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(claims, followups, historyRows, withdrawals)
	return &EngineMetrics{claims: claims, followups: followups, historyRows: historyRows, withdrawals: withdrawals}
}

func (m *EngineMetrics) IncClaim(outcome string) {
	if m == nil || m.claims == nil {
		return
	}
	m.claims.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *EngineMetrics) IncFollowup(outcome string) {
	if m == nil || m.followups == nil {
		return
	}
	m.followups.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *EngineMetrics) AddHistoryRows(targetType string, n int) {
	if m == nil || m.historyRows == nil || n <= 0 {
		return
	}
	m.historyRows.WithLabelValues(normalizeLabel(targetType)).Add(float64(n))
}

func (m *EngineMetrics) IncWithdrawal(outcome string) {
	if m == nil || m.withdrawals == nil {
		return
	}
	m.withdrawals.WithLabelValues(normalizeLabel(outcome)).Inc()
}
