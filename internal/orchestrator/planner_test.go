package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brucewavesmarket/open-deep-research/internal/llmclient"
)

func TestBuildPlanUsesLLMPlanWhenValid(t *testing.T) {
	llm := llmclient.NewFakeClient()
	llm.Queue("research-planner", llmclient.Response{Text: twoComponentPlanResponse})

	plan := BuildPlan(context.Background(), llm, "four day workweek impact", nil, nil)

	require.Len(t, plan.Components, 2)
	assert.Equal(t, []string{"Productivity", "Wellbeing"}, plan.Sequencing)
}

func TestBuildPlanFallsBackToBasicPlanOnLLMFailure(t *testing.T) {
	llm := llmclient.NewFakeClient()
	llm.Err = assert.AnError

	plan := BuildPlan(context.Background(), llm, "four day workweek impact", nil, nil)

	require.Len(t, plan.Components, 1)
	assert.Equal(t, "Basic Research", plan.Components[0].Name)
}

func TestBuildPlanFallsBackToBasicPlanOnInvalidPlan(t *testing.T) {
	llm := llmclient.NewFakeClient()
	// Sequencing references a component that does not exist: Validate fails.
	llm.Queue("research-planner", llmclient.Response{
		Text: `{"mainObjective": "x", "components": [{"name": "A", "subQuestions": ["q"], "successCriteria": ["c"]}], "sequencing": ["B"]}`,
	})

	plan := BuildPlan(context.Background(), llm, "query", nil, nil)

	require.Len(t, plan.Components, 1)
	assert.Equal(t, "Basic Research", plan.Components[0].Name)
}

func TestBuildPlanIncludesFeedbackInPrompt(t *testing.T) {
	llm := llmclient.NewFakeClient()
	llm.Queue("research-planner", llmclient.Response{Text: twoComponentPlanResponse})

	BuildPlan(context.Background(), llm, "query", []FeedbackResponse{{Question: "scope?", Response: "global"}}, nil)

	require.Len(t, llm.Calls, 1)
	assert.Contains(t, llm.Calls[0].UserPrompt, "scope?")
	assert.Contains(t, llm.Calls[0].UserPrompt, "global")
}
