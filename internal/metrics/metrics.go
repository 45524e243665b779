// Package metrics exposes Prometheus counters for the domain events
// worth watching in production: session creation and scheduling
// conflicts, pilot registrations and validation key issuance.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flightconnect_sessions_created_total",
		Help: "Number of registration sessions created.",
	})

	SessionConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flightconnect_session_conflicts_total",
		Help: "Number of session creations or updates rejected for overlapping another session.",
	})

	ParticipantsRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flightconnect_participants_registered_total",
		Help: "Number of pilot registrations accepted.",
	})

	KeysIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flightconnect_valid_keys_issued_total",
		Help: "Number of validation keys issued.",
	})
)
