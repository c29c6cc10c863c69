package orchestrator

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/brucewavesmarket/open-deep-research/internal/config"
	"github.com/brucewavesmarket/open-deep-research/internal/llmclient"
	"github.com/brucewavesmarket/open-deep-research/internal/progress"
	"github.com/brucewavesmarket/open-deep-research/internal/research"
	"github.com/brucewavesmarket/open-deep-research/internal/searchclient"
)

type componentSummaryLLMSchema struct {
	Summary string `json:"summary"`
}

// ResearchComponent runs the per-sub-question loop for one component (spec
// §4.6), skipping the first sub-question (already consumed by the quick
// pass). Breadth and depth degrade as time per remaining sub-question
// shrinks. The loop exits early on saturation/high coverage or when
// remaining time drops below 20s.
func ResearchComponent(ctx context.Context, llm llmclient.Client, search searchclient.Client, comp research.Component, result *research.ComponentResult, depthMultiplier float64, remainingMsAtStart int64, cfg config.ResearchConfig, sink *progress.SafeSink, runID string, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	subQuestions := comp.SubQuestions
	if len(subQuestions) > 1 {
		subQuestions = subQuestions[1:]
	} else {
		subQuestions = nil
	}

	remainingMs := remainingMsAtStart
	for i, sq := range subQuestions {
		remainingSubQCount := len(subQuestions) - i
		timePerQMs := remainingMs / int64(remainingSubQCount)

		breadth, depth := degradeBreadthDepth(timePerQMs, cfg.Breadth, cfg.Depth, depthMultiplier)

		if remainingMs < 20000 {
			break
		}

		outcome := DeepResearch(ctx, llm, search, sq, comp, result, breadth, depth, remainingMs, cfg, nil, logger)
		remainingMs -= outcome.TimeSpentMs
		if remainingMs < 0 {
			remainingMs = 0
		}

		emitProgress(sink, runID, comp.Name, fmt.Sprintf("researched sub-question %q", sq))

		sat := EvaluateSaturation(ctx, llm, comp, *result, i+1, len(subQuestions), logger)
		if sat.IsSaturated || sat.CoveragePercentage >= int(cfg.ComponentSaturationPct) {
			emitProgress(sink, runID, comp.Name, "saturation reached, ending component early")
			break
		}
		if !outcome.ShouldContinue {
			break
		}
	}

	result.Summary = componentSummary(ctx, llm, comp, *result, logger)
}

// degradeBreadthDepth implements spec §4.6's breadth/depth degradation:
// timePerQ < 30s -> breadth=1, depth=1; < 60s -> breadth halved (>=1),
// depth=1; else configured breadth and depth*multiplier (>=1, rounded).
func degradeBreadthDepth(timePerQMs int64, baseBreadth, baseDepth int, multiplier float64) (int, int) {
	switch {
	case timePerQMs < 30000:
		return 1, 1
	case timePerQMs < 60000:
		b := baseBreadth / 2
		if b < 1 {
			b = 1
		}
		return b, 1
	default:
		d := int(math.Round(float64(baseDepth) * multiplier))
		if d < 1 {
			d = 1
		}
		return baseBreadth, d
	}
}

func componentSummary(ctx context.Context, llm llmclient.Client, comp research.Component, result research.ComponentResult, logger *zap.Logger) string {
	if logger == nil {
		logger = zap.NewNop()
	}
	out, err := llmclient.Generate[componentSummaryLLMSchema](ctx, llm, llmclient.Request{
		AgentID:      "research-component-summarizer",
		SystemPrompt: `Write a concise prose summary of the learnings for this research component. Respond with JSON matching {"summary": string}.`,
		UserPrompt:   fmt.Sprintf("Component: %s\nSuccess criteria: %v\nLearnings: %v", comp.Name, comp.SuccessCriteria, result.Learnings),
		MaxTokens:    768,
		Temperature:  0.3,
	})
	if err != nil {
		logger.Warn("component summary: LLM call failed, using fallback", zap.String("component", comp.Name), zap.Error(err))
		return fmt.Sprintf("Findings for %s", comp.Name)
	}
	return out.Summary
}

func emitProgress(sink *progress.SafeSink, runID, component, content string) {
	if sink == nil {
		return
	}
	sink.Write(progress.Event{
		RunID:     runID,
		Type:      progress.EventProgress,
		Component: component,
		Content:   content,
		Timestamp: time.Now(),
	})
}
