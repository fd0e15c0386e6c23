package leave

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/univhr/hrcore/internal/apperr"
)

// Transition names used as metric label and in logs.
const (
	TransitionCreate            = "create"
	TransitionSupervisorApprove = "supervisor_approve"
	TransitionHRApprove         = "hr_approve"
	TransitionHRDirectApprove   = "hr_direct_approve"
	TransitionReject            = "reject"
	TransitionCancel            = "cancel"
)

var (
	transitions = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Namespace: "hrcore",
			Subsystem: "leave",
			Name:      "transitions_total",
			Help:      "Number of leave request transitions, by transition and result.",
		},
		[]string{"transition", "result"},
	)

	debits = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Namespace: "hrcore",
			Subsystem: "leave",
			Name:      "credit_debits_total",
			Help:      "Number of leave credit debits, by leave type.",
		},
		[]string{"leave_type"},
	)
)

func observe(transition string, err error) {
	result := "ok"
	if err != nil {
		result = apperr.KindName(err)
	}

	transitions.WithLabelValues(transition, result).Inc()
}
