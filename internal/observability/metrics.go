package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricAuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "uigen",
		Name:      "auth_attempts_total",
		Help:      "Credential actions by action and outcome.",
	}, []string{"action", "outcome"})
	metricReconcile = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "uigen",
		Name:      "reconcile_total",
		Help:      "Post-authentication reconciliations by disposition.",
	}, []string{"disposition"})
	metricVerifyFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "uigen",
		Name:      "session_verify_failures_total",
		Help:      "Session credentials that failed verification.",
	})
)

// RecordAuthAttempt counts one credential action. outcome is "success",
// "rejected" or "error".
func RecordAuthAttempt(action, outcome string) {
	metricAuthAttempts.WithLabelValues(action, outcome).Inc()
}

// RecordReconcile counts one reconciliation.
func RecordReconcile(disposition string) {
	metricReconcile.WithLabelValues(disposition).Inc()
}

// RecordVerifyFailure counts one rejected session credential.
func RecordVerifyFailure() {
	metricVerifyFailures.Inc()
}
