package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/brucewavesmarket/open-deep-research/internal/llmclient"
	"github.com/brucewavesmarket/open-deep-research/internal/research"
)

type importanceLLMSchema struct {
	Scores map[string]float64 `json:"scores"`
}

// ScoreImportance returns a name -> score mapping intended to sum to ~100
// (spec §4.2). On LLM failure it returns equal allocation 100/len(components).
func ScoreImportance(ctx context.Context, llm llmclient.Client, plan research.Plan, logger *zap.Logger) map[string]float64 {
	if logger == nil {
		logger = zap.NewNop()
	}

	names := make([]string, 0, len(plan.Components))
	for _, c := range plan.Components {
		names = append(names, c.Name)
	}

	out, err := llmclient.Generate[importanceLLMSchema](ctx, llm, llmclient.Request{
		AgentID: "research-importance-scorer",
		SystemPrompt: "You assign each research component a relative importance score from 0 to 100, " +
			`with scores summing to roughly 100 across all components. Respond with JSON matching ` +
			`{"scores": {componentName: number}}.`,
		UserPrompt:  fmt.Sprintf("Main objective: %s\nComponents: %v", plan.MainObjective, names),
		MaxTokens:   512,
		Temperature: 0.2,
	})
	if err != nil || len(out.Scores) == 0 {
		if err != nil {
			logger.Warn("importance scorer: LLM call failed, using equal allocation", zap.Error(err))
		}
		return equalAllocation(names)
	}

	scores := make(map[string]float64, len(names))
	for _, name := range names {
		if s, ok := out.Scores[name]; ok {
			scores[name] = s
		}
	}
	if len(scores) != len(names) {
		logger.Warn("importance scorer: LLM response missing components, using equal allocation")
		return equalAllocation(names)
	}
	return scores
}

func equalAllocation(names []string) map[string]float64 {
	scores := make(map[string]float64, len(names))
	if len(names) == 0 {
		return scores
	}
	share := 100.0 / float64(len(names))
	for _, name := range names {
		scores[name] = share
	}
	return scores
}
