package orchestrator

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/brucewavesmarket/open-deep-research/internal/llmclient"
	"github.com/brucewavesmarket/open-deep-research/internal/metrics"
	"github.com/brucewavesmarket/open-deep-research/internal/research"
)

type saturationLLMSchema struct {
	IsSaturated        bool              `json:"isSaturated"`
	CoveragePercentage int               `json:"coveragePercentage"`
	CoveredCriteria    []string          `json:"coveredCriteria"`
	RemainingCriteria  []string          `json:"remainingCriteria"`
	GapDetails         map[string]string `json:"gapDetails"`
	Reasoning          string            `json:"reasoning"`
}

// EvaluateSaturation classifies each success criterion as covered or
// remaining and returns an overall coverage percentage (spec §4.10). Below
// the minimal-iteration gate (10% of planned iterations) it short-circuits
// without an LLM call, reporting zero coverage and marking every criterion
// "No coverage yet". LLM failures degrade to "continue" semantics (not
// saturated, zero coverage).
func EvaluateSaturation(ctx context.Context, llm llmclient.Client, comp research.Component, result research.ComponentResult, completedIterations, plannedIterations int, logger *zap.Logger) research.SaturationResult {
	if logger == nil {
		logger = zap.NewNop()
	}

	minimalGate := int(math.Ceil(0.1 * float64(plannedIterations)))
	if completedIterations < minimalGate {
		metrics.SaturationOutcomes.WithLabelValues("short_circuit_minimum_iterations").Inc()
		gaps := make(research.GapMap, len(comp.SuccessCriteria))
		for _, c := range comp.SuccessCriteria {
			gaps[c] = research.GapNoCoverageYet
		}
		return research.SaturationResult{
			IsSaturated:       false,
			RemainingCriteria: comp.SuccessCriteria,
			GapDetails:        gaps,
			Reasoning:         "fewer than 10% of planned iterations completed",
		}
	}

	out, err := llmclient.Generate[saturationLLMSchema](ctx, llm, llmclient.Request{
		AgentID: "research-saturation-evaluator",
		SystemPrompt: "Classify each success criterion as covered or remaining given the learnings so " +
			"far, return an integer coverage percentage 0-100, per-criterion gap descriptions for any " +
			"remaining criteria, and whether research is saturated (no more new information expected). " +
			`Respond with JSON matching {"isSaturated": bool, "coveragePercentage": int, ` +
			`"coveredCriteria": [string], "remainingCriteria": [string], "gapDetails": {criterion: string}, "reasoning"}.`,
		UserPrompt:  fmt.Sprintf("Component: %s\nSuccess criteria: %v\nLearnings: %v", comp.Name, comp.SuccessCriteria, result.Learnings),
		MaxTokens:   1024,
		Temperature: 0.2,
	})
	if err != nil {
		metrics.RecordLLMCall("saturation", true)
		logger.Warn("saturation evaluator: LLM call failed, defaulting to continue", zap.Error(err))
		return research.SaturationResult{IsSaturated: false, RemainingCriteria: comp.SuccessCriteria, Reasoning: "LLM call failed"}
	}
	metrics.RecordLLMCall("saturation", false)
	if out.IsSaturated {
		metrics.SaturationOutcomes.WithLabelValues("saturated").Inc()
	} else {
		metrics.SaturationOutcomes.WithLabelValues("continuing").Inc()
	}

	coverage := out.CoveragePercentage
	if coverage < 0 {
		coverage = 0
	}
	if coverage > 100 {
		coverage = 100
	}
	return research.SaturationResult{
		IsSaturated:        out.IsSaturated,
		CoveragePercentage: coverage,
		CoveredCriteria:    out.CoveredCriteria,
		RemainingCriteria:  out.RemainingCriteria,
		Reasoning:          out.Reasoning,
		GapDetails:         research.GapMap(out.GapDetails),
	}
}
