package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/brucewavesmarket/open-deep-research/internal/llmclient"
)

// Analysis is the Analysis & Plan verdict for a batch of summarized
// learnings (spec §4.8).
type Analysis struct {
	Summary         string   `json:"summary"`
	Valuable        bool     `json:"valuable"`
	Gaps            []string `json:"gaps"`
	ShouldContinue  bool     `json:"shouldContinue"`
	NextSearchTopic string   `json:"nextSearchTopic"`
}

// AnalyzeAndPlan decides whether to continue researching the current
// query and what to search next. Content with no bodies over 50 chars
// short-circuits locally without an LLM call; when the LLM judges the
// content not valuable, it forces a continue decision with a simplified
// fallback topic.
func AnalyzeAndPlan(ctx context.Context, llm llmclient.Client, query string, contentBodies []string, logger *zap.Logger) Analysis {
	if logger == nil {
		logger = zap.NewNop()
	}

	if allBodiesTooShort(contentBodies) {
		return Analysis{
			ShouldContinue:  true,
			NextSearchTopic: firstNWords(query, 3) + " basics",
		}
	}

	out, err := llmclient.Generate[Analysis](ctx, llm, llmclient.Request{
		AgentID: "research-analysis",
		SystemPrompt: "Given summarized search content for a query, decide whether it is valuable, " +
			"identify gaps, and whether research on this topic should continue. If not valuable, set " +
			"shouldContinue=true and propose a simplified nextSearchTopic. Respond with JSON matching " +
			`{"summary", "valuable": bool, "gaps": [string], "shouldContinue": bool, "nextSearchTopic"}.`,
		UserPrompt:  fmt.Sprintf("Query: %s\nContent: %s", query, strings.Join(contentBodies, "\n---\n")),
		MaxTokens:   1024,
		Temperature: 0.3,
	})
	if err != nil {
		logger.Warn("analysis: LLM call failed, defaulting to continue", zap.Error(err))
		return Analysis{ShouldContinue: true, NextSearchTopic: firstNWords(query, 3) + " basics"}
	}

	if !out.Valuable {
		out.ShouldContinue = true
		if out.NextSearchTopic == "" {
			out.NextSearchTopic = firstNWords(query, 3) + " basics"
		}
	}
	return out
}

func allBodiesTooShort(bodies []string) bool {
	if len(bodies) == 0 {
		return true
	}
	for _, b := range bodies {
		if len(strings.TrimSpace(b)) >= 50 {
			return false
		}
	}
	return true
}

func firstNWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
