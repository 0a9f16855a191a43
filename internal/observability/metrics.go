// Package observability provides Prometheus metrics for the game server.
package observability

import "github.com/prometheus/client_golang/prometheus"

const (
	MoveAccepted = "accepted"
	MoveRejected = "rejected"

	OutcomeWinX = "win_x"
	OutcomeWinO = "win_o"
	OutcomeDraw = "draw"
)

var (
	// RoundsStartedTotal counts new and restarted rounds.
	RoundsStartedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tictactoe_rounds_started_total",
			Help: "Rounds started",
		},
	)

	// MovesTotal counts move intents by result.
	MovesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tictactoe_moves_total",
			Help: "Move intents",
		},
		[]string{"result"},
	)

	// EvictionsTotal counts marks cleared by the disappearing rule.
	EvictionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tictactoe_evictions_total",
			Help: "Disappeared marks",
		},
	)

	// DisappearingActivationsTotal counts rounds that reached the disappearing phase.
	DisappearingActivationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tictactoe_disappearing_activations_total",
			Help: "Rounds entering the disappearing phase",
		},
	)

	// RoundsFinishedTotal counts finished rounds by outcome.
	RoundsFinishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tictactoe_rounds_finished_total",
			Help: "Finished rounds",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		RoundsStartedTotal,
		MovesTotal,
		EvictionsTotal,
		DisappearingActivationsTotal,
		RoundsFinishedTotal,
	)
}
