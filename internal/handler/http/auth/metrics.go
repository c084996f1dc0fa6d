package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	decisionAllowed         = "allowed"
	decisionUnauthenticated = "unauthenticated"
	decisionForbidden       = "forbidden"
)

var decisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_decisions_total",
		Help: "Authorization decisions on protected endpoints by role",
	},
	[]string{"role", "decision"},
)

func recordDecision(role, decision string) {
	if role == "" {
		role = "none"
	}
	decisionsTotal.WithLabelValues(role, decision).Inc()
}
