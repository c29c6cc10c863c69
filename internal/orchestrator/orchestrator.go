package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/brucewavesmarket/open-deep-research/internal/config"
	"github.com/brucewavesmarket/open-deep-research/internal/llmclient"
	"github.com/brucewavesmarket/open-deep-research/internal/metrics"
	"github.com/brucewavesmarket/open-deep-research/internal/progress"
	"github.com/brucewavesmarket/open-deep-research/internal/research"
	"github.com/brucewavesmarket/open-deep-research/internal/searchclient"
)

// Input is the external interface of a research run (spec §6).
type Input struct {
	Query                     string
	Breadth                   int
	Depth                     int
	MaxDurationMinutes        int
	ComponentDepthMultipliers map[string]float64
	PriorLearnings            []string
	PriorVisitedURLs          []string
	FeedbackResponses         []FeedbackResponse
	// TestAnthropicMode, when true, skips planning and research entirely and
	// just exercises the synthesis model as a connectivity smoke test.
	TestAnthropicMode bool
}

// APITestResult is returned instead of a full Output when TestAnthropicMode
// is set.
type APITestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TimeStats summarizes how the wall-clock budget was spent.
type TimeStats struct {
	TotalTimeMs            int64            `json:"totalTimeMs"`
	ComponentTimes         map[string]int64 `json:"componentTimes"`
	CompletedComponents    []string         `json:"completedComponents"`
	SkippedComponents      []string         `json:"skippedComponents"`
	AverageIterationTimeMs float64          `json:"averageIterationTimeMs"`
}

// Output is the external result of a research run (spec §6).
type Output struct {
	Learnings        []string                            `json:"learnings"`
	VisitedURLs      []string                             `json:"visitedUrls"`
	ResearchPlan     research.Plan                         `json:"researchPlan"`
	ComponentResults map[string]research.ComponentResult  `json:"componentResults"`
	TimeStats        TimeStats                             `json:"timeStats"`
	Report           string                                `json:"report"`
	APITestResult    *APITestResult                        `json:"apiTestResult,omitempty"`
}

// Orchestrator wires the planner, scorer, rebalancer, quick-pass runner,
// per-component researcher, quality evaluator, and report assembler into
// the single sequential control loop described in spec §5. It holds no
// per-run state; every field here is a shared dependency, and a single
// Orchestrator value is safe to reuse across concurrent Run calls as long
// as the underlying LLM/search clients are themselves safe for concurrent
// use (the HTTP-backed ones are).
type Orchestrator struct {
	LLM    llmclient.Client
	Search searchclient.Client
	// SynthesisLLM is nil when no synthesis API key is configured; the
	// report assembler then falls back to LLM for the final pass.
	SynthesisLLM llmclient.Client
	Sink         *progress.SafeSink
	Config       config.ResearchConfig
	Logger       *zap.Logger
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Run executes one complete research pass for runID. Cancellation is
// cooperative: ctx is wrapped with the wall-clock budget as a deadline, and
// every suspension point between components re-checks the wrapped
// context's error before doing further LLM/search work, so a cancel or
// deadline never aborts mid-component — it takes effect at the next
// component boundary and emits a final "aborted" event before returning
// whatever was completed so far.
func (o *Orchestrator) Run(ctx context.Context, runID string, in Input) (Output, error) {
	logger := o.logger().With(zap.String("run_id", runID))
	if in.Query == "" {
		return Output{}, ErrInvalidInput
	}
	if o.LLM == nil {
		return Output{}, ErrNoLLMClient
	}

	cfg := o.Config
	if cfg.MaxDurationMinutes == 0 {
		cfg = config.DefaultResearchConfig()
	}
	budgetMinutes := cfg.MaxDurationMinutes
	if in.MaxDurationMinutes > 0 {
		budgetMinutes = in.MaxDurationMinutes
	}
	if in.Breadth > 0 {
		cfg.Breadth = in.Breadth
	}
	if in.Depth > 0 {
		cfg.Depth = in.Depth
	}

	if in.TestAnthropicMode {
		return o.runAPITest(ctx, logger), nil
	}

	if o.Search == nil {
		return Output{}, ErrNoSearchClient
	}

	metrics.RunsStarted.Inc()
	runStart := time.Now()
	runCtx, cancel := context.WithDeadline(ctx, runStart.Add(time.Duration(budgetMinutes)*time.Minute))
	defer cancel()

	o.emit(runID, progress.EventPlanRevision, "", "starting research run")
	plan := BuildPlan(runCtx, o.LLM, in.Query, in.FeedbackResponses, logger)
	o.emit(runID, progress.EventPlanRevision, "", fmt.Sprintf("plan built with %d components", len(plan.Components)))

	scores := ScoreImportance(runCtx, o.LLM, plan, logger)

	quickPassResults := RunQuickPass(runCtx, o.LLM, o.Search, plan, cfg, logger)
	results := make(map[string]research.ComponentResult, len(plan.Components))
	learnings := append([]string(nil), in.PriorLearnings...)
	visitedURLs := append([]string(nil), in.PriorVisitedURLs...)
	for name, r := range quickPassResults {
		results[name] = *r
		learnings = append(learnings, r.Learnings...)
		visitedURLs = append(visitedURLs, r.VisitedURLs...)
	}
	o.emit(runID, progress.EventMidComponentResult, "", fmt.Sprintf("quick pass complete: %d components", len(quickPassResults)))

	multipliers := Rebalance(&plan, scores, in.ComponentDepthMultipliers)

	state := research.Init(plan, budgetMinutes, runStart)
	stats := &research.Stats{}

	completed := make([]string, 0, len(plan.Components))
	skipped := make([]string, 0)
	aborted := false

	for state.InProgress != "" {
		if runCtx.Err() != nil {
			aborted = true
			break
		}
		state.Tick(time.Now(), budgetMinutes)

		name := state.InProgress
		comp := plan.ComponentByName(name)
		if comp == nil {
			state.Complete(name, 0)
			continue
		}

		decision := research.ShouldContinueComponent(state, stats, *comp)
		if decision.NeedsLLMDecision {
			decision = AskSchedulingDecision(runCtx, o.LLM, *comp, state, stats, logger)
		}

		if !decision.Continue {
			o.emit(runID, progress.EventTimeDecision, name, "skipped: "+decision.Reasoning)
			skipped = append(skipped, name)
			metrics.RecordComponentCompletion("skipped", 0)
			state.Complete(name, 0)
			continue
		}
		o.emit(runID, progress.EventTimeDecision, name, decision.Reasoning)

		result := results[name]
		multiplier := multipliers[name]
		if multiplier == 0 {
			multiplier = 1.0
		}

		iterStart := time.Now()
		ResearchComponent(runCtx, o.LLM, o.Search, *comp, &result, multiplier, state.RemainingMs, cfg, o.Sink, runID, logger)
		EvaluateQuality(runCtx, o.LLM, o.Search, *comp, &result, state.RemainingMs, cfg, logger)
		spent := time.Since(iterStart).Milliseconds()
		result.TimeSpentMs += spent
		results[name] = result

		stats.RecordIteration(spent)
		stats.RecordComponent(result.TimeSpentMs, len(completed))
		completed = append(completed, name)
		metrics.RecordComponentCompletion("completed", float64(spent)/1000)
		o.emit(runID, progress.EventComponentTiming, name, fmt.Sprintf("completed in %dms", spent))

		learnings = append(learnings, result.Learnings...)
		visitedURLs = append(visitedURLs, result.VisitedURLs...)

		state.Complete(name, spent)
	}

	timeStats := TimeStats{
		TotalTimeMs:            time.Since(runStart).Milliseconds(),
		ComponentTimes:         state.ComponentTimes,
		CompletedComponents:    completed,
		SkippedComponents:      skipped,
		AverageIterationTimeMs: stats.AverageIterationTimeMs,
	}

	if aborted {
		o.emit(runID, progress.EventError, "", "research run aborted: time budget exceeded or run cancelled")
		metrics.RecordRunCompletion("aborted", time.Since(runStart).Seconds())
		if o.Sink != nil {
			o.Sink.Close()
		}
		return Output{
			Learnings:        dedupeStrings(learnings),
			VisitedURLs:      dedupeStrings(visitedURLs),
			ResearchPlan:     plan,
			ComponentResults: results,
			TimeStats:        timeStats,
		}, nil
	}

	reportStart := time.Now()
	report := AssembleReport(runCtx, o.LLM, o.SynthesisLLM, plan, results, o.Sink, runID, logger)
	metrics.ReportAssemblyDuration.Observe(time.Since(reportStart).Seconds())
	metrics.RecordRunCompletion("completed", time.Since(runStart).Seconds())
	if o.Sink != nil {
		o.Sink.Close()
	}

	return Output{
		Learnings:        dedupeStrings(learnings),
		VisitedURLs:      dedupeStrings(visitedURLs),
		ResearchPlan:     plan,
		ComponentResults: results,
		TimeStats:        timeStats,
		Report:           report,
	}, nil
}

// runAPITest implements spec §6/§8 scenario 6: skip planning and research
// entirely and just verify the synthesis model (or, absent one, the
// primary model) responds.
func (o *Orchestrator) runAPITest(ctx context.Context, logger *zap.Logger) Output {
	client := o.SynthesisLLM
	if client == nil {
		client = o.LLM
	}
	resp, err := client.Generate(ctx, llmclient.Request{
		AgentID:      "research-api-test",
		SystemPrompt: "Reply with a short confirmation that this API connection is working.",
		UserPrompt:   "ping",
		MaxTokens:    64,
		Temperature:  0,
	})
	if err != nil {
		logger.Warn("api test mode: call failed", zap.Error(err))
		return Output{APITestResult: &APITestResult{
			Success: false,
			Message: fmt.Sprintf("API test failed: %v", err),
		}}
	}
	return Output{
		APITestResult: &APITestResult{Success: true, Message: "API connection verified"},
		Report:        resp.Text,
	}
}

func (o *Orchestrator) emit(runID, eventType, component, content string) {
	if o.Sink == nil {
		return
	}
	o.Sink.Write(progress.Event{
		RunID:     runID,
		Type:      eventType,
		Component: component,
		Content:   content,
		Timestamp: time.Now(),
	})
}

// dedupeStrings preserves first-seen order while dropping repeats and
// empty values, matching ComponentResult.AppendLearnings/AppendURLs's
// dedup semantics at the run level.
func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
