// Package metrics holds the Prometheus collectors for provisioning workflows,
// permission checks and notification delivery. They are served on /metrics.
//
// Usage:
//
//	metrics.RecordWorkflow("invite", "ok")
//	metrics.RecordPush("sent")
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for WorkflowRunsTotal.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected" // 4xx
	OutcomeFailed   = "failed"   // 5xx
)

var (
	// PermissionChecksTotal counts permission decisions by result
	// (owner, allowed, denied).
	PermissionChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agendapro_permission_checks_total",
			Help: "Total number of group permission checks",
		},
		[]string{"result"},
	)

	// WorkflowRunsTotal counts workflow invocations by name and outcome.
	WorkflowRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agendapro_workflow_runs_total",
			Help: "Total number of provisioning workflow runs",
		},
		[]string{"workflow", "outcome"},
	)

	// InvitationsExpiredTotal counts invitations flipped to EXPIRED.
	InvitationsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agendapro_invitations_expired_total",
			Help: "Total number of invitations moved to EXPIRED",
		},
	)

	// PushDeliveriesTotal counts push attempts by result
	// (sent, failed, invalid_token, skipped).
	PushDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agendapro_push_deliveries_total",
			Help: "Total number of push notification deliveries",
		},
		[]string{"result"},
	)

	// EmailsTotal counts invitation emails by result (sent, failed, disabled).
	EmailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agendapro_emails_total",
			Help: "Total number of outbound emails",
		},
		[]string{"result"},
	)
)

func RecordPermissionCheck(result string) {
	PermissionChecksTotal.WithLabelValues(result).Inc()
}

func RecordWorkflow(workflow, outcome string) {
	WorkflowRunsTotal.WithLabelValues(workflow, outcome).Inc()
}

// OutcomeForStatus maps an HTTP status to a workflow outcome label.
func OutcomeForStatus(status int) string {
	switch {
	case status >= 500:
		return OutcomeFailed
	case status >= 400:
		return OutcomeRejected
	}
	return OutcomeOK
}

func RecordPush(result string) {
	PushDeliveriesTotal.WithLabelValues(result).Inc()
}

func RecordEmail(result string) {
	EmailsTotal.WithLabelValues(result).Inc()
}
