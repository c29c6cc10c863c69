package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brucewavesmarket/open-deep-research/internal/config"
	"github.com/brucewavesmarket/open-deep-research/internal/llmclient"
	"github.com/brucewavesmarket/open-deep-research/internal/research"
	"github.com/brucewavesmarket/open-deep-research/internal/searchclient"
)

func TestSimplifyQueryStripsOperatorsAndTruncates(t *testing.T) {
	q := simplifyQuery(`site:reddit.com "four day" workweek productivity study results`, 4)
	assert.Equal(t, "workweek productivity study results", q)
}

func TestTrimContentNeverTrimsBelowMinChunk(t *testing.T) {
	body := make([]byte, 500)
	for i := range body {
		body[i] = 'x'
	}
	trimmed := trimContent(string(body), 10, 140)
	assert.Len(t, trimmed, 140)
}

func TestTrimContentLeavesShortBodyUntouched(t *testing.T) {
	assert.Equal(t, "short body", trimContent("short body", 25000, 140))
}

func TestSummarizeLearningsReturnsNilForEmptyBodies(t *testing.T) {
	llm := llmclient.NewFakeClient()
	out := summarizeLearnings(context.Background(), llm, "query", nil, nil)
	assert.Nil(t, out)
	assert.Empty(t, llm.Calls)
}

func TestSummarizeLearningsCapsAtFive(t *testing.T) {
	llm := llmclient.NewFakeClient()
	llm.Queue("research-summarizer", llmclient.Response{
		Text: `{"learnings": ["a", "b", "c", "d", "e", "f", "g"]}`,
	})
	out := summarizeLearnings(context.Background(), llm, "query", []string{"body"}, nil)
	assert.Len(t, out, 5)
}

func TestRunSearchWithFallbackRetriesOnEmptyResults(t *testing.T) {
	search := searchclient.NewFakeClient()
	search.Responses["site:reddit.com four day workweek"] = []searchclient.Page{
		{URL: "https://x.test", Markdown: "  "}, // not substantial
	}
	search.Responses["four day workweek"] = []searchclient.Page{
		{URL: "https://x.test", Markdown: "a real finding with more than one hundred characters of substantial content describing the study in considerable detail"},
	}
	cfg := config.DefaultResearchConfig()

	pages, err := runSearchWithFallback(context.Background(), search, "site:reddit.com four day workweek", cfg, nil)

	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Contains(t, pages[0].Markdown, "real finding")
	assert.Equal(t, []string{"site:reddit.com four day workweek", "four day workweek"}, search.Calls)
}

func TestRunSearchWithFallbackNoRetryWhenSimplifyIsNoOp(t *testing.T) {
	search := searchclient.NewFakeClient()
	search.Responses["workweek"] = []searchclient.Page{{URL: "https://x.test", Markdown: ""}}
	cfg := config.DefaultResearchConfig()

	pages, err := runSearchWithFallback(context.Background(), search, "workweek", cfg, nil)

	require.NoError(t, err)
	assert.Len(t, search.Calls, 1, "simplify(query)==query must not trigger a retry")
	assert.Len(t, pages, 1)
}

func TestDeepResearchProducesLearningsAndURLs(t *testing.T) {
	llm := llmclient.NewFakeClient()
	llm.Queue("research-subquery-generator", llmclient.Response{
		Text: `{"queries": [{"query": "four day workweek study", "reasoning": "direct"}]}`,
	})
	llm.Queue("research-summarizer", llmclient.Response{
		Text: `{"learnings": ["Productivity rose in several pilot studies."]}`,
	})
	llm.Queue("research-analysis", llmclient.Response{
		Text: `{"summary": "ok", "valuable": true, "gaps": [], "shouldContinue": false, "nextSearchTopic": ""}`,
	})

	search := searchclient.NewFakeClient()
	search.Responses["four day workweek study"] = []searchclient.Page{
		{URL: "https://example.test/a", Markdown: "a substantial finding about four day workweeks and productivity metrics across many firms, measured over a full year"},
	}

	comp := research.Component{Name: "Productivity", SubQuestions: []string{"q"}, SuccessCriteria: []string{"c"}}
	result := &research.ComponentResult{}
	cfg := config.DefaultResearchConfig()

	outcome := DeepResearch(context.Background(), llm, search, "four day workweek study", comp, result, 1, 1, 120000, cfg, nil, nil)

	require.Len(t, outcome.Learnings, 1)
	assert.Equal(t, []string{"https://example.test/a"}, outcome.VisitedURLs)
	assert.Len(t, result.Learnings, 1)
	assert.Len(t, result.VisitedURLs, 1)
	assert.False(t, outcome.ShouldContinue)
}
