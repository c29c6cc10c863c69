// Package metrics registers the orchestrator's Prometheus series, adapted
// from the teacher's internal/metrics/metrics.go (same promauto pattern,
// same package-level var-block-plus-Record* helper shape) but renamed and
// re-scoped to what this orchestrator's run loop actually emits.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "research_runs_started_total",
			Help: "Total number of research runs started",
		},
	)

	RunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_runs_completed_total",
			Help: "Total number of research runs completed, by outcome",
		},
		[]string{"outcome"}, // "completed", "aborted", "error"
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "research_run_duration_seconds",
			Help:    "Total wall-clock duration of a research run",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1200, 1800},
		},
	)

	ComponentsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_components_total",
			Help: "Total number of components finishing in each terminal state",
		},
		[]string{"state"}, // "completed", "skipped"
	)

	ComponentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "research_component_duration_seconds",
			Help:    "Time spent researching a single component",
			Buckets: prometheus.DefBuckets,
		},
	)

	IterationsRun = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "research_iterations_total",
			Help: "Total number of deep-research iterations executed",
		},
	)

	SaturationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_saturation_outcomes_total",
			Help: "Saturation evaluator outcomes",
		},
		[]string{"outcome"}, // "saturated", "continuing", "short_circuit_minimum_iterations"
	)

	SubQueryFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "research_subquery_fallbacks_total",
			Help: "Total number of times the simplified fallback query was used after an empty search",
		},
	)

	SearchEmptyResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "research_search_empty_results_total",
			Help: "Total number of search calls returning no page with substantial content",
		},
	)

	LLMCallOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_llm_call_outcomes_total",
			Help: "LLM call outcomes by calling stage",
		},
		[]string{"stage", "outcome"}, // outcome: "ok", "fallback"
	)

	SearchCallOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_search_call_outcomes_total",
			Help: "Search call outcomes",
		},
		[]string{"outcome"}, // "ok", "error"
	)

	CircuitBreakerTrips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_circuit_breaker_trips_total",
			Help: "Total number of times a circuit breaker opened",
		},
		[]string{"breaker"}, // "llm-service", "search-service"
	)

	ReportAssemblyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "research_report_assembly_duration_seconds",
			Help:    "Time spent assembling the final report",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// RecordRunCompletion records the terminal outcome and duration of a run.
func RecordRunCompletion(outcome string, durationSeconds float64) {
	RunsCompleted.WithLabelValues(outcome).Inc()
	RunDuration.Observe(durationSeconds)
}

// RecordComponentCompletion records a component reaching a terminal state.
func RecordComponentCompletion(state string, durationSeconds float64) {
	ComponentsCompleted.WithLabelValues(state).Inc()
	if state == "completed" {
		ComponentDuration.Observe(durationSeconds)
	}
}

// RecordLLMCall records an LLM call's outcome for a given orchestrator stage.
func RecordLLMCall(stage string, usedFallback bool) {
	outcome := "ok"
	if usedFallback {
		outcome = "fallback"
	}
	LLMCallOutcomes.WithLabelValues(stage, outcome).Inc()
}

// RecordSearchCall records a search call's outcome.
func RecordSearchCall(err error) {
	if err != nil {
		SearchCallOutcomes.WithLabelValues("error").Inc()
		return
	}
	SearchCallOutcomes.WithLabelValues("ok").Inc()
}

// RecordCircuitBreakerTrip increments the trip counter for a named breaker.
func RecordCircuitBreakerTrip(name string) {
	CircuitBreakerTrips.WithLabelValues(name).Inc()
}
