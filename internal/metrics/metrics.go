// internal/metrics/metrics.go
//
// Prometheus collectors for game activity. A Recorder is fed through a game
// Listener, so every session reports without the engine knowing about
// metrics.

package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/robalobadob/turing/internal/game"
)

// Recorder owns the game collectors.
type Recorder struct {
	started    prometheus.Counter
	finished   *prometheus.CounterVec
	validators *prometheus.CounterVec
	history    *prometheus.CounterVec
	rounds     prometheus.Histogram
	score      prometheus.Histogram
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "turing",
			Name:      "games_started_total",
			Help:      "Games started.",
		}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "turing",
			Name:      "games_finished_total",
			Help:      "Games finished, by outcome.",
		}, []string{"outcome"}),
		validators: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "turing",
			Name:      "validator_uses_total",
			Help:      "Validator probes, by validator id and result.",
		}, []string{"validator", "result"}),
		history: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "turing",
			Name:      "history_operations_total",
			Help:      "Undo/redo requests, by operation and whether they applied.",
		}, []string{"op", "applied"}),
		rounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "turing",
			Name:      "game_rounds",
			Help:      "Rounds played in finished games.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
		score: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "turing",
			Name:      "game_score",
			Help:      "Validator cost of won games.",
			Buckets:   prometheus.LinearBuckets(0, 2, 12),
		}),
	}
	reg.MustRegister(r.started, r.finished, r.validators, r.history, r.rounds, r.score)
	return r
}

// Observe is a game.Listener.
func (r *Recorder) Observe(e game.Event) {
	switch e.Kind {
	case game.EventNewGameStarted:
		r.started.Inc()
	case game.EventValidatorUsed:
		result := "fail"
		if e.Result != nil && *e.Result {
			result = "pass"
		}
		r.validators.WithLabelValues(strconv.Itoa(e.ValidatorID), result).Inc()
	case game.EventUndoPerformed:
		r.history.WithLabelValues("undo", "true").Inc()
	case game.EventUndoUnavailable:
		r.history.WithLabelValues("undo", "false").Inc()
	case game.EventRedoPerformed:
		r.history.WithLabelValues("redo", "true").Inc()
	case game.EventRedoUnavailable:
		r.history.WithLabelValues("redo", "false").Inc()
	case game.EventGameWon:
		r.finished.WithLabelValues(string(game.OutcomeWon)).Inc()
		r.rounds.Observe(float64(e.Rounds))
		r.score.Observe(float64(e.Score))
	case game.EventGameLost:
		r.finished.WithLabelValues(string(game.OutcomeLost)).Inc()
		r.rounds.Observe(float64(e.Rounds))
	case game.EventGameAbandoned:
		r.finished.WithLabelValues(string(game.OutcomeAbandoned)).Inc()
	}
}
