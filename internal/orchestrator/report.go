package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/brucewavesmarket/open-deep-research/internal/llmclient"
	"github.com/brucewavesmarket/open-deep-research/internal/progress"
	"github.com/brucewavesmarket/open-deep-research/internal/research"
)

type sectionLLMSchema struct {
	SectionContent string `json:"sectionContent"`
}

type fallbackReportLLMSchema struct {
	ReportMarkdown string `json:"reportMarkdown"`
}

// AssembleReport builds the final markdown report in two stages: per-
// component sections (LLM, falling back to a mechanical bullet list), then
// a synthesis pass over the full bundle. synthesisLLM is nil when no
// synthesis API key is configured, which transparently falls back to
// primaryLLM producing a single reportMarkdown JSON value (spec §4.12).
func AssembleReport(ctx context.Context, primaryLLM, synthesisLLM llmclient.Client, plan research.Plan, results map[string]research.ComponentResult, sink *progress.SafeSink, runID string, logger *zap.Logger) string {
	if logger == nil {
		logger = zap.NewNop()
	}

	sections := make(map[string]string, len(plan.Components))
	for _, name := range plan.Sequencing {
		result, ok := results[name]
		if !ok {
			continue
		}
		comp := plan.ComponentByName(name)
		if comp == nil {
			continue
		}
		sections[name] = buildSection(ctx, primaryLLM, *comp, result, logger)
	}

	if synthesisLLM != nil {
		if report, ok := synthesize(ctx, synthesisLLM, plan, sections, results, sink, runID, logger); ok {
			return report
		}
		logger.Warn("report assembler: synthesis API unavailable, falling back to primary model")
	}

	return fallbackReport(ctx, primaryLLM, plan, sections, results, logger)
}

func buildSection(ctx context.Context, llm llmclient.Client, comp research.Component, result research.ComponentResult, logger *zap.Logger) string {
	out, err := llmclient.Generate[sectionLLMSchema](ctx, llm, llmclient.Request{
		AgentID: "research-report-section",
		SystemPrompt: "Write a markdown section for this research component, referencing its success " +
			`criteria and learnings. Respond with JSON matching {"sectionContent": string}.`,
		UserPrompt:  fmt.Sprintf("Component: %s\nSuccess criteria: %v\nLearnings: %v", comp.Name, comp.SuccessCriteria, result.Learnings),
		MaxTokens:   1536,
		Temperature: 0.4,
	})
	if err == nil && out.SectionContent != "" {
		return out.SectionContent
	}
	logger.Warn("report assembler: section LLM call failed, using mechanical section", zap.String("component", comp.Name), zap.Error(err))
	return mechanicalSection(comp, result)
}

func mechanicalSection(comp research.Component, result research.ComponentResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n%s\n\n", comp.Name, result.Summary)
	for _, l := range result.Learnings {
		fmt.Fprintf(&b, "- %s\n", l)
	}
	return b.String()
}

// synthesize streams the synthesized markdown to the progress sink in
// bounded chunks and returns the full text. ok is false on any error, so
// the caller falls back transparently.
func synthesize(ctx context.Context, synthesisLLM llmclient.Client, plan research.Plan, sections map[string]string, results map[string]research.ComponentResult, sink *progress.SafeSink, runID string, logger *zap.Logger) (string, bool) {
	var bundle strings.Builder
	fmt.Fprintf(&bundle, "Main objective: %s\n\n", plan.MainObjective)
	for _, name := range plan.Sequencing {
		fmt.Fprintf(&bundle, "%s\n", sections[name])
	}
	fmt.Fprintf(&bundle, "\n## Sources\n")
	seen := make(map[string]bool)
	for _, name := range plan.Sequencing {
		for _, u := range results[name].VisitedURLs {
			if !seen[u] {
				seen[u] = true
				fmt.Fprintf(&bundle, "- %s\n", u)
			}
		}
	}

	resp, err := synthesisLLM.Generate(ctx, llmclient.Request{
		AgentID:      "research-synthesis",
		SystemPrompt: "Combine the provided component sections and sources into one coherent final research report in markdown.",
		UserPrompt:   bundle.String(),
		MaxTokens:    8192,
		Temperature:  0.3,
	})
	if err != nil || resp.Text == "" {
		return "", false
	}

	final := appendSources(resp.Text, plan, results)
	streamChunks(sink, runID, final)
	return final, true
}

const synthesisChunkSize = 512

func streamChunks(sink *progress.SafeSink, runID, text string) {
	if sink == nil {
		return
	}
	for i := 0; i < len(text); i += synthesisChunkSize {
		end := i + synthesisChunkSize
		if end > len(text) {
			end = len(text)
		}
		sink.Write(progress.Event{
			RunID:     runID,
			Type:      progress.EventResult,
			Content:   text[i:end],
			Timestamp: time.Now(),
		})
	}
}

func fallbackReport(ctx context.Context, primaryLLM llmclient.Client, plan research.Plan, sections map[string]string, results map[string]research.ComponentResult, logger *zap.Logger) string {
	var bundle strings.Builder
	fmt.Fprintf(&bundle, "Main objective: %s\n\n", plan.MainObjective)
	for _, name := range plan.Sequencing {
		fmt.Fprintf(&bundle, "%s\n", sections[name])
	}

	out, err := llmclient.Generate[fallbackReportLLMSchema](ctx, primaryLLM, llmclient.Request{
		AgentID:      "research-report-fallback",
		SystemPrompt: `Combine the provided component sections into one coherent final research report in markdown. Respond with JSON matching {"reportMarkdown": string}.`,
		UserPrompt:   bundle.String(),
		MaxTokens:    8192,
		Temperature:  0.3,
	})
	if err == nil && out.ReportMarkdown != "" {
		return appendSources(out.ReportMarkdown, plan, results)
	}
	logger.Warn("report assembler: fallback LLM call failed, assembling mechanically", zap.Error(err))
	return appendSources(bundle.String(), plan, results)
}

func appendSources(report string, plan research.Plan, results map[string]research.ComponentResult) string {
	var b strings.Builder
	b.WriteString(report)
	b.WriteString("\n\n## Sources\n")
	seen := make(map[string]bool)
	for _, name := range plan.Sequencing {
		for _, u := range results[name].VisitedURLs {
			if !seen[u] {
				seen[u] = true
				fmt.Fprintf(&b, "- %s\n", u)
			}
		}
	}
	return b.String()
}
