package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brucewavesmarket/open-deep-research/internal/config"
	"github.com/brucewavesmarket/open-deep-research/internal/llmclient"
	"github.com/brucewavesmarket/open-deep-research/internal/research"
	"github.com/brucewavesmarket/open-deep-research/internal/searchclient"
)

func TestDegradeBreadthDepthUnderThirtySeconds(t *testing.T) {
	breadth, depth := degradeBreadthDepth(20000, 4, 3, 1.5)
	assert.Equal(t, 1, breadth)
	assert.Equal(t, 1, depth)
}

func TestDegradeBreadthDepthUnderSixtySecondsHalvesBreadth(t *testing.T) {
	breadth, depth := degradeBreadthDepth(45000, 4, 3, 1.5)
	assert.Equal(t, 2, breadth)
	assert.Equal(t, 1, depth)
}

func TestDegradeBreadthDepthUnderSixtySecondsHalvedBreadthFloorsAtOne(t *testing.T) {
	breadth, _ := degradeBreadthDepth(45000, 1, 3, 1.5)
	assert.Equal(t, 1, breadth)
}

func TestDegradeBreadthDepthAboveSixtySecondsScalesDepthByMultiplier(t *testing.T) {
	breadth, depth := degradeBreadthDepth(90000, 4, 2, 1.5)
	assert.Equal(t, 4, breadth)
	assert.Equal(t, 3, depth) // round(2 * 1.5) = 3
}

func TestDegradeBreadthDepthScaledDepthFloorsAtOne(t *testing.T) {
	_, depth := degradeBreadthDepth(90000, 4, 1, 0.1)
	assert.Equal(t, 1, depth)
}

func TestComponentSummaryFallsBackOnLLMFailure(t *testing.T) {
	llm := llmclient.NewFakeClient()
	comp := research.Component{Name: "Productivity", SuccessCriteria: []string{"c"}}
	summary := componentSummary(context.Background(), llm, comp, research.ComponentResult{}, nil)
	assert.Equal(t, "Findings for Productivity", summary)
}

func TestComponentSummaryUsesLLMResponse(t *testing.T) {
	llm := llmclient.NewFakeClient()
	llm.Queue("research-component-summarizer", llmclient.Response{Text: `{"summary": "output held steady"}`})
	comp := research.Component{Name: "Productivity", SuccessCriteria: []string{"c"}}
	summary := componentSummary(context.Background(), llm, comp, research.ComponentResult{}, nil)
	assert.Equal(t, "output held steady", summary)
}

// TestResearchComponentSkipsFirstSubQuestionAlreadyConsumedByQuickPass
// exercises the multi-sub-question path: a component with two sub-
// questions should only run DeepResearch for the second one, since the
// first was already consumed by RunQuickPass before ResearchComponent is
// ever called.
func TestResearchComponentSkipsFirstSubQuestionAlreadyConsumedByQuickPass(t *testing.T) {
	llm := llmclient.NewFakeClient()
	llm.Queue("research-subquery-generator", llmclient.Response{
		Text: `{"queries": [{"query": "four day workweek burnout", "reasoning": "direct"}]}`,
	})
	llm.Queue("research-analysis", llmclient.Response{
		Text: `{"summary": "ok", "valuable": true, "gaps": [], "shouldContinue": false, "nextSearchTopic": ""}`,
	})

	search := searchclient.NewFakeClient()
	search.Responses["four day workweek burnout"] = []searchclient.Page{
		{URL: "https://x.test", Markdown: "a substantial finding about burnout falling after four day workweek trials across many firms, as reported in follow-up surveys"},
	}

	comp := research.Component{
		Name:            "Wellbeing",
		SubQuestions:    []string{"four day workweek output", "four day workweek burnout"},
		SuccessCriteria: []string{"covers burnout data"},
	}
	result := &research.ComponentResult{}
	cfg := config.DefaultResearchConfig()

	ResearchComponent(context.Background(), llm, search, comp, result, 1.0, 300000, cfg, nil, "run-1", nil)

	assert.Len(t, search.Calls, 1)
	assert.Equal(t, "four day workweek burnout", search.Calls[0])
	assert.Contains(t, result.VisitedURLs, "https://x.test")
}

// TestResearchComponentStopsWhenRemainingTimeTooLow covers the loop's
// 20-second floor: with almost no time left, the loop must exit before
// attempting any DeepResearch call for the second sub-question.
func TestResearchComponentStopsWhenRemainingTimeTooLow(t *testing.T) {
	llm := llmclient.NewFakeClient()
	search := searchclient.NewFakeClient()

	comp := research.Component{
		Name:            "Wellbeing",
		SubQuestions:    []string{"q1", "q2"},
		SuccessCriteria: []string{"c"},
	}
	result := &research.ComponentResult{}
	cfg := config.DefaultResearchConfig()

	ResearchComponent(context.Background(), llm, search, comp, result, 1.0, 5000, cfg, nil, "run-1", nil)

	assert.Empty(t, search.Calls, "no DeepResearch call should run under the 20s floor")
	// componentSummary still runs unconditionally after the loop.
	assert.Equal(t, "Findings for Wellbeing", result.Summary)
}
