package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Invitation lifecycle collectors, registered on the default registry and
// exposed through /metrics.
var (
	InvitationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ownership_invitations_created_total",
			Help: "Total invitations created, by redemption mode.",
		},
		[]string{"mode"},
	)

	InvitationsAccepted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ownership_invitations_accepted_total",
			Help: "Total successful invitation redemptions, by redemption mode.",
		},
		[]string{"mode"},
	)

	InvitationsCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ownership_invitations_cancelled_total",
			Help: "Total invitations cancelled.",
		},
	)

	InvitationsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ownership_invitations_expired_total",
			Help: "Total pending invitations swept to expired.",
		},
	)

	AcceptFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ownership_invitation_accept_failures_total",
			Help: "Failed invitation redemptions, by failure kind.",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(
		InvitationsCreated,
		InvitationsAccepted,
		InvitationsCancelled,
		InvitationsExpired,
		AcceptFailures,
	)
}
