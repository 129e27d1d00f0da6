package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ChecksTotal              *prometheus.CounterVec
	DuplicatesTotal          *prometheus.CounterVec
	DeactivationsTotal       prometheus.Counter
	NotificationFailures     prometheus.Counter
	GuardContentionTotal     prometheus.Counter
	OlderCandidateSkipsTotal prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		ChecksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dupguard_fraud_checks_total",
			Help: "Total duplicate detection runs by outcome (clean, duplicate, error)",
		}, []string{"outcome"}),
		DuplicatesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "dupguard_fraud_duplicates_total",
			Help: "Total duplicates found by triggering field group",
		}, []string{"field"}),
		DeactivationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dupguard_fraud_deactivations_total",
			Help: "Total accounts auto-deactivated as newer duplicates",
		}),
		NotificationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dupguard_fraud_notification_failures_total",
			Help: "Total admin notification writes that failed (best-effort channel)",
		}),
		GuardContentionTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dupguard_fraud_guard_contention_total",
			Help: "Total detection runs skipped because the fingerprint lock was held",
		}),
		OlderCandidateSkipsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "dupguard_fraud_older_candidate_skips_total",
			Help: "Total duplicate pairs where the candidate was older and no action was taken",
		}),
	}
}

func (m *Metrics) ObserveOutcome(outcome string) {
	m.ChecksTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveDuplicate(field string) {
	m.DuplicatesTotal.WithLabelValues(field).Inc()
}
