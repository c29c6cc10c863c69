package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/brucewavesmarket/open-deep-research/internal/llmclient"
	"github.com/brucewavesmarket/open-deep-research/internal/research"
)

type schedulingLLMSchema struct {
	ShouldContinue    bool   `json:"shouldContinue"`
	Reasoning         string `json:"reasoning"`
	RecommendedBreadth int   `json:"recommendedBreadth"`
	RecommendedDepth   int   `json:"recommendedDepth"`
}

// AskSchedulingDecision is spec §4.5 step 7: when the deterministic rules
// are inconclusive, ask the LLM whether to continue researching the named
// component given the numbers, defaulting to continue on LLM error.
func AskSchedulingDecision(ctx context.Context, llm llmclient.Client, comp research.Component, state *research.State, stats *research.Stats, logger *zap.Logger) research.SchedulingDecision {
	if logger == nil {
		logger = zap.NewNop()
	}

	out, err := llmclient.Generate[schedulingLLMSchema](ctx, llm, llmclient.Request{
		AgentID: "research-scheduler",
		SystemPrompt: "Given the remaining time budget, components still queued, and recent iteration " +
			"times, decide whether to continue researching the current component or skip it, and " +
			"recommend a breadth/depth for any remaining work. Respond with JSON matching " +
			`{"shouldContinue": bool, "reasoning": string, "recommendedBreadth": int, "recommendedDepth": int}.`,
		UserPrompt: fmt.Sprintf(
			"Component: %s\nRemaining time (ms): %d\nComponents still queued: %d\nRecent iteration time (ms): %.0f",
			comp.Name, state.RemainingMs, state.RemainingCount(), stats.RecentIterationTime(3),
		),
		MaxTokens:   256,
		Temperature: 0.1,
	})
	if err != nil {
		logger.Warn("scheduler: LLM decision call failed, defaulting to continue", zap.String("component", comp.Name), zap.Error(err))
		return research.SchedulingDecision{Continue: true, Reasoning: "LLM call failed, defaulting to continue"}
	}
	return research.SchedulingDecision{Continue: out.ShouldContinue, Reasoning: out.Reasoning}
}
