package orchestrator

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/brucewavesmarket/open-deep-research/internal/config"
	"github.com/brucewavesmarket/open-deep-research/internal/llmclient"
	"github.com/brucewavesmarket/open-deep-research/internal/research"
	"github.com/brucewavesmarket/open-deep-research/internal/searchclient"
)

// RunQuickPass runs one breadth=2, depth=1 deep-research query on each
// component's first sub-question, all started and awaited together (spec
// §4.3). Each worker owns its own ComponentResult; a failing worker's
// component still gets an entry, with an empty summary, so a single
// failure never aborts the others.
func RunQuickPass(ctx context.Context, llm llmclient.Client, search searchclient.Client, plan research.Plan, cfg config.ResearchConfig, logger *zap.Logger) map[string]*research.ComponentResult {
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make(map[string]*research.ComponentResult, len(plan.Components))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, comp := range plan.Components {
		comp := comp
		result := &research.ComponentResult{}
		mu.Lock()
		results[comp.Name] = result
		mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Warn("quick pass: worker panicked, keeping partial result",
						zap.String("component", comp.Name), zap.Any("panic", r))
				}
			}()

			if len(comp.SubQuestions) == 0 {
				return
			}
			outcome := DeepResearch(ctx, llm, search, comp.SubQuestions[0], comp, result, cfg.QuickPassBreadth, cfg.QuickPassDepth, int64(cfg.MaxDurationMinutes)*60000, cfg, nil, logger)
			result.TimeSpentMs = outcome.TimeSpentMs
		}()
	}

	wg.Wait()
	return results
}
