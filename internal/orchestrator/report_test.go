package orchestrator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brucewavesmarket/open-deep-research/internal/llmclient"
	"github.com/brucewavesmarket/open-deep-research/internal/research"
)

func reportFixture() (research.Plan, map[string]research.ComponentResult) {
	plan := research.Plan{
		MainObjective: "four day workweek impact",
		Components: []research.Component{
			{Name: "Productivity", SuccessCriteria: []string{"covers output metrics"}},
			{Name: "Wellbeing", SuccessCriteria: []string{"covers burnout data"}},
		},
		Sequencing: []string{"Productivity", "Wellbeing"},
	}
	results := map[string]research.ComponentResult{
		"Productivity": {
			Learnings:   []string{"Output held steady in most trials."},
			VisitedURLs: []string{"https://a.test", "https://b.test"},
			Summary:     "Productivity summary.",
		},
		"Wellbeing": {
			Learnings:   []string{"Reported burnout fell."},
			VisitedURLs: []string{"https://b.test", "https://c.test"},
			Summary:     "Wellbeing summary.",
		},
	}
	return plan, results
}

func TestAppendSourcesDedupesAcrossComponents(t *testing.T) {
	plan, results := reportFixture()
	report := appendSources("# Report\n", plan, results)

	assert.Contains(t, report, "## Sources")
	assert.Equal(t, 1, strings.Count(report, "https://b.test"), "shared URL must appear once")
	assert.Contains(t, report, "https://a.test")
	assert.Contains(t, report, "https://c.test")
}

func TestMechanicalSectionIncludesNameAndLearnings(t *testing.T) {
	plan, results := reportFixture()
	comp := plan.ComponentByName("Productivity")
	section := mechanicalSection(*comp, results["Productivity"])

	assert.Contains(t, section, "## Productivity")
	assert.Contains(t, section, "Output held steady in most trials.")
}

func TestAssembleReportFallsBackWhenNoSynthesisClient(t *testing.T) {
	plan, results := reportFixture()
	llm := llmclient.NewFakeClient()
	llm.Queue("research-report-section", llmclient.Response{Text: `{"sectionContent": "## Productivity\n\nGood output."}`})
	llm.Queue("research-report-section", llmclient.Response{Text: `{"sectionContent": "## Wellbeing\n\nLess burnout."}`})
	llm.Queue("research-report-fallback", llmclient.Response{Text: `{"reportMarkdown": "# Four Day Workweek\n\n## Productivity\n\nGood output.\n\n## Wellbeing\n\nLess burnout."}`})

	report := AssembleReport(context.Background(), llm, nil, plan, results, nil, "run-1", nil)

	require.NotEmpty(t, report)
	assert.Contains(t, report, "## Sources")
	assert.Contains(t, report, "https://a.test")
}

func TestAssembleReportMechanicalWhenEverythingFails(t *testing.T) {
	plan, results := reportFixture()
	llm := llmclient.NewFakeClient() // no queued responses anywhere -> every call errors

	report := AssembleReport(context.Background(), llm, nil, plan, results, nil, "run-1", nil)

	assert.Contains(t, report, "## Productivity")
	assert.Contains(t, report, "## Wellbeing")
	assert.Contains(t, report, "## Sources")
}
