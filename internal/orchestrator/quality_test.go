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

func TestEvaluateQualitySkippedUnderThreeMinuteFloor(t *testing.T) {
	llm := llmclient.NewFakeClient()
	search := searchclient.NewFakeClient()
	comp := research.Component{Name: "Productivity", SuccessCriteria: []string{"c"}}
	result := &research.ComponentResult{Learnings: []string{"l"}}
	cfg := config.DefaultResearchConfig()

	EvaluateQuality(context.Background(), llm, search, comp, result, 2*60*1000, cfg, nil)

	assert.Empty(t, llm.Calls, "no LLM call should happen under the 3-minute floor")
}

func TestEvaluateQualityNoFollowUpWhenQualityMet(t *testing.T) {
	llm := llmclient.NewFakeClient()
	llm.Queue("research-quality-evaluator", llmclient.Response{
		Text: `{"meetsQuality": true, "missingElements": [], "additionalQueries": []}`,
	})
	search := searchclient.NewFakeClient()
	comp := research.Component{Name: "Productivity", SuccessCriteria: []string{"c"}}
	result := &research.ComponentResult{Learnings: []string{"l"}}
	cfg := config.DefaultResearchConfig()

	EvaluateQuality(context.Background(), llm, search, comp, result, 5*60*1000, cfg, nil)

	assert.Empty(t, search.Calls, "no follow-up search should run once quality is met")
}

// TestEvaluateQualityRunsBiasedFollowUpQueriesCappedAtTwo covers spec
// §4.11's behavior when quality is not met: up to 2 additional queries run,
// biased toward the reported missing elements, and the component summary is
// refreshed afterward.
func TestEvaluateQualityRunsBiasedFollowUpQueriesCappedAtTwo(t *testing.T) {
	llm := llmclient.NewFakeClient()
	llm.Queue("research-quality-evaluator", llmclient.Response{
		Text: `{"meetsQuality": false, "missingElements": ["regional data"], "additionalQueries": ["a b c d", "e f g h", "i j k l"]}`,
	})
	llm.Queue("research-subquery-generator", llmclient.Response{Text: `{"queries": [{"query": "a b c d", "reasoning": "r"}]}`})
	llm.Queue("research-analysis", llmclient.Response{
		Text: `{"summary": "ok", "valuable": true, "gaps": [], "shouldContinue": false, "nextSearchTopic": ""}`,
	})
	llm.Queue("research-subquery-generator", llmclient.Response{Text: `{"queries": [{"query": "e f g h", "reasoning": "r"}]}`})
	llm.Queue("research-analysis", llmclient.Response{
		Text: `{"summary": "ok", "valuable": true, "gaps": [], "shouldContinue": false, "nextSearchTopic": ""}`,
	})
	llm.Queue("research-component-summarizer", llmclient.Response{Text: `{"summary": "refreshed"}`})

	search := searchclient.NewFakeClient()
	search.Responses["a b c d"] = []searchclient.Page{{URL: "https://x.test", Markdown: "a substantial finding with more than one hundred characters describing regional workweek data from several countries"}}
	search.Responses["e f g h"] = []searchclient.Page{{URL: "https://y.test", Markdown: "another substantial finding with more than one hundred characters describing regional workweek data from several countries"}}

	comp := research.Component{Name: "Productivity", SuccessCriteria: []string{"c"}}
	result := &research.ComponentResult{Learnings: []string{"l"}}
	cfg := config.DefaultResearchConfig()

	EvaluateQuality(context.Background(), llm, search, comp, result, 10*60*1000, cfg, nil)

	assert.Len(t, search.Calls, 2, "third additional query must be dropped by the cap of 2")
	assert.Equal(t, "refreshed", result.Summary)
}

func TestEvaluateQualityNoFollowUpWhenLLMCallFails(t *testing.T) {
	llm := llmclient.NewFakeClient()
	llm.Err = assert.AnError
	search := searchclient.NewFakeClient()
	comp := research.Component{Name: "Productivity", SuccessCriteria: []string{"c"}}
	result := &research.ComponentResult{Learnings: []string{"l"}}
	cfg := config.DefaultResearchConfig()

	EvaluateQuality(context.Background(), llm, search, comp, result, 10*60*1000, cfg, nil)

	assert.Empty(t, search.Calls)
	assert.Empty(t, result.Summary)
}
