package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/brucewavesmarket/open-deep-research/internal/llmclient"
	"github.com/brucewavesmarket/open-deep-research/internal/metrics"
	"github.com/brucewavesmarket/open-deep-research/internal/research"
)

// FeedbackResponse is one clarifying question/answer pair the caller may
// supply to the Planner (spec §6).
type FeedbackResponse struct {
	Question string `json:"question"`
	Response string `json:"response"`
}

type planLLMSchema struct {
	MainObjective   string               `json:"mainObjective"`
	Components      []research.Component `json:"components"`
	Sequencing      []string             `json:"sequencing"`
	PotentialPivots []string             `json:"potentialPivots"`
}

// BuildPlan turns a free-text query plus optional clarifying Q&A into a
// valid ResearchPlan. On LLM failure or an invalid plan it falls back to
// research.BasicPlan, matching spec §4.1.
func BuildPlan(ctx context.Context, llm llmclient.Client, query string, feedback []FeedbackResponse, logger *zap.Logger) research.Plan {
	if logger == nil {
		logger = zap.NewNop()
	}

	var qa strings.Builder
	for _, fb := range feedback {
		fmt.Fprintf(&qa, "Q: %s\nA: %s\n", fb.Question, fb.Response)
	}

	out, err := llmclient.Generate[planLLMSchema](ctx, llm, llmclient.Request{
		AgentID: "research-planner",
		SystemPrompt: "You decompose a research query into a plan: a main objective and a set of " +
			"distinct components, each with its own sub-questions and success criteria. Each component " +
			"must address a genuinely distinct aspect of the query; sub-questions must be specific enough " +
			"to search individually; success criteria define when a component is done. Respond with JSON " +
			`matching {"mainObjective": string, "components": [{"name", "description", "subQuestions": [string], ` +
			`"successCriteria": [string]}], "sequencing": [name], "potentialPivots": [string]}. ` +
			"sequencing must be a permutation of the component names.",
		UserPrompt:  fmt.Sprintf("Query: %s\n\n%s", query, qa.String()),
		MaxTokens:   2048,
		Temperature: 0.3,
	})
	if err != nil {
		metrics.RecordLLMCall("planner", true)
		logger.Warn("planner: LLM call failed, using basic plan", zap.Error(err))
		return research.BasicPlan(query)
	}

	plan := research.Plan{
		MainObjective:   out.MainObjective,
		Components:      out.Components,
		Sequencing:      out.Sequencing,
		PotentialPivots: out.PotentialPivots,
	}
	if err := plan.Validate(); err != nil {
		metrics.RecordLLMCall("planner", true)
		logger.Warn("planner: LLM plan failed validation, using basic plan", zap.Error(err))
		return research.BasicPlan(query)
	}
	metrics.RecordLLMCall("planner", false)
	return plan
}
