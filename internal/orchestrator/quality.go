package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/brucewavesmarket/open-deep-research/internal/config"
	"github.com/brucewavesmarket/open-deep-research/internal/llmclient"
	"github.com/brucewavesmarket/open-deep-research/internal/research"
	"github.com/brucewavesmarket/open-deep-research/internal/searchclient"
)

type qualityLLMSchema struct {
	MeetsQuality      bool     `json:"meetsQuality"`
	MissingElements   []string `json:"missingElements"`
	AdditionalQueries []string `json:"additionalQueries"`
}

// EvaluateQuality runs after a component completes. If at least 3 minutes
// remain, it asks the LLM whether success criteria are met; if not, it
// runs up to 2 additional breadth=2, depth=1 queries biased toward the
// reported missing elements and refreshes the component summary
// afterward (spec §4.11). Skipped entirely under the 3-minute floor.
func EvaluateQuality(ctx context.Context, llm llmclient.Client, search searchclient.Client, comp research.Component, result *research.ComponentResult, remainingMs int64, cfg config.ResearchConfig, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	const threeMinMs = 3 * 60 * 1000
	if remainingMs < threeMinMs {
		return
	}

	out, err := llmclient.Generate[qualityLLMSchema](ctx, llm, llmclient.Request{
		AgentID: "research-quality-evaluator",
		SystemPrompt: "Given a component's success criteria and learnings, decide whether quality is " +
			"met. If not, list missing elements and up to 2 follow-up search queries to close the gap. " +
			`Respond with JSON matching {"meetsQuality": bool, "missingElements": [string], "additionalQueries": [string]}.`,
		UserPrompt:  fmt.Sprintf("Component: %s\nSuccess criteria: %v\nLearnings: %v", comp.Name, comp.SuccessCriteria, result.Learnings),
		MaxTokens:   768,
		Temperature: 0.2,
	})
	if err != nil {
		logger.Warn("quality evaluator: LLM call failed, skipping follow-up queries", zap.String("component", comp.Name), zap.Error(err))
		return
	}
	if out.MeetsQuality || len(out.AdditionalQueries) == 0 {
		return
	}

	gaps := make(research.GapMap, len(out.MissingElements))
	for _, m := range out.MissingElements {
		gaps[m] = "missing element flagged by quality evaluator"
	}

	queries := out.AdditionalQueries
	if len(queries) > 2 {
		queries = queries[:2]
	}
	for _, q := range queries {
		DeepResearch(ctx, llm, search, q, comp, result, 2, 1, remainingMs, cfg, gaps, logger)
	}

	result.Summary = componentSummary(ctx, llm, comp, *result, logger)
}
