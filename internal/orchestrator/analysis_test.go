package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brucewavesmarket/open-deep-research/internal/llmclient"
)

func TestAnalyzeAndPlanShortCircuitsOnAllBodiesTooShort(t *testing.T) {
	llm := llmclient.NewFakeClient()

	out := AnalyzeAndPlan(context.Background(), llm, "four day workweek", []string{"short", ""}, nil)

	assert.True(t, out.ShouldContinue)
	assert.Equal(t, "four day workweek basics", out.NextSearchTopic)
	assert.Empty(t, llm.Calls, "short-circuit must not call the LLM")
}

func TestAnalyzeAndPlanForcesContinueWhenNotValuable(t *testing.T) {
	llm := llmclient.NewFakeClient()
	llm.Queue("research-analysis", llmclient.Response{
		Text: `{"summary": "nothing useful", "valuable": false, "gaps": [], "shouldContinue": false, "nextSearchTopic": ""}`,
	})
	body := "this is a long enough body to pass the fifty character substantiality threshold check"

	out := AnalyzeAndPlan(context.Background(), llm, "four day workweek", []string{body}, nil)

	assert.True(t, out.ShouldContinue)
	assert.Equal(t, "four day workweek basics", out.NextSearchTopic)
}

func TestAnalyzeAndPlanLLMFailureDefaultsToContinue(t *testing.T) {
	llm := llmclient.NewFakeClient()
	body := "this is a long enough body to pass the fifty character substantiality threshold check"

	out := AnalyzeAndPlan(context.Background(), llm, "workweek productivity", []string{body}, nil)

	assert.True(t, out.ShouldContinue)
	assert.Equal(t, "workweek productivity basics", out.NextSearchTopic)
}
