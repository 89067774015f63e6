package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/calebmorris-dev/socratic-math/go-tutor/internal/guard"
)

// #region metrics
var (
	// turnsTotal counts processed student turns by outcome.
	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tutor_turns_total",
		Help: "Student turns processed, by outcome",
	}, []string{"outcome"})

	// validationRejects counts candidate responses turned away by validation.
	validationRejects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tutor_validation_rejects_total",
		Help: "Candidate tutor responses rejected by validation",
	})

	// generationRetries counts generation attempts beyond the first.
	generationRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tutor_generation_retries_total",
		Help: "Extra generation attempts beyond the first per turn",
	})

	// fallbacksTotal counts turns answered from the canned question pool.
	fallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tutor_fallbacks_total",
		Help: "Turns answered with a fallback question",
	})

	// generationDuration tracks the latency of the generate-validate loop.
	generationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tutor_generation_duration_seconds",
		Help:    "Duration of the generate-validate loop per turn",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
	})
)

// observeTurn records the counters for one orchestrator outcome.
func observeTurn(result guard.TurnResult) {
	outcome := "accepted"
	if !result.ValidationPassed {
		outcome = "fallback"
		fallbacksTotal.Inc()
	}
	turnsTotal.WithLabelValues(outcome).Inc()

	if result.Attempts > 1 {
		generationRetries.Add(float64(result.Attempts - 1))
	}
	rejected := result.Attempts
	if result.ValidationPassed {
		rejected--
	}
	if rejected > 0 {
		validationRejects.Add(float64(rejected))
	}
}

// #endregion metrics
