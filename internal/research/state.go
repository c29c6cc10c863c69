package research

import (
	"math"
	"time"
)

// State is the time-state machine's snapshot: start time, elapsed and
// remaining wall-clock budget, which component is in progress, which are
// done or still queued, and per-component time spent. Created once at the
// start of a run and refreshed by Tick/Complete before every scheduling
// decision. completed ∪ remaining ∪ {inProgress} always partitions the
// plan's components.
type State struct {
	StartTime      time.Time
	CurrentTime    time.Time
	ElapsedMs      int64
	RemainingMs    int64
	Completed      []string
	InProgress     string
	Remaining      []string
	ComponentTimes map[string]int64
}

// Init creates the starting state for a plan and a budget given in minutes.
func Init(plan Plan, budgetMinutes int, now time.Time) *State {
	budgetMs := int64(budgetMinutes) * 60 * 1000
	remaining := append([]string(nil), plan.Sequencing...)
	var inProgress string
	if len(remaining) > 0 {
		inProgress = remaining[0]
		remaining = remaining[1:]
	}
	return &State{
		StartTime:      now,
		CurrentTime:    now,
		ElapsedMs:      0,
		RemainingMs:    budgetMs,
		Completed:      nil,
		InProgress:     inProgress,
		Remaining:      remaining,
		ComponentTimes: make(map[string]int64),
	}
}

// Tick refreshes CurrentTime/ElapsedMs/RemainingMs against the original
// budget. remainingTime = max(0, budget - elapsed).
func (s *State) Tick(now time.Time, budgetMinutes int) {
	budgetMs := int64(budgetMinutes) * 60 * 1000
	s.CurrentTime = now
	s.ElapsedMs = now.Sub(s.StartTime).Milliseconds()
	remaining := budgetMs - s.ElapsedMs
	if remaining < 0 {
		remaining = 0
	}
	s.RemainingMs = remaining
}

// Complete moves name into Completed, removes it from the active slot,
// records its spent time, and advances InProgress to the next queued
// component. This is the corrected behavior for spec §9's open question:
// InProgress becomes Remaining[0] (or empty) rather than searching for
// "the first element not equal to completed".
func (s *State) Complete(name string, spentMs int64) {
	s.Completed = append(s.Completed, name)
	s.ComponentTimes[name] = spentMs
	if s.InProgress == name {
		if len(s.Remaining) > 0 {
			s.InProgress = s.Remaining[0]
			s.Remaining = s.Remaining[1:]
		} else {
			s.InProgress = ""
		}
		return
	}
	// name was skipped directly out of Remaining without ever becoming InProgress.
	for i, r := range s.Remaining {
		if r == name {
			s.Remaining = append(s.Remaining[:i], s.Remaining[i+1:]...)
			break
		}
	}
}

// RemainingCount returns the number of components still queued behind the
// one currently in progress.
func (s *State) RemainingCount() int {
	return len(s.Remaining)
}

// SchedulingDecision is the verdict from ShouldContinueComponent. When
// NeedsLLMDecision is true, steps 1-6 were inconclusive and the caller
// should ask the LLM for a skip/continue call (spec §4.5 step 7), defaulting
// to Continue=true if that call fails.
type SchedulingDecision struct {
	Continue         bool
	Minimal          bool
	NeedsLLMDecision bool
	Reasoning        string
}

// ShouldContinueComponent implements the six deterministic steps of the
// spec §4.5 scheduling decision. Step 7 (ask the LLM) is left to the
// caller via NeedsLLMDecision, since it requires an LLM round trip this
// package has no business making.
func ShouldContinueComponent(s *State, stats *Stats, comp Component) SchedulingDecision {
	const fiveMinMs = 5 * 60 * 1000
	if s.RemainingMs > fiveMinMs {
		return SchedulingDecision{Continue: true, Reasoning: "ample time remaining"}
	}

	remainingCount := s.RemainingCount()
	if remainingCount == 0 {
		return SchedulingDecision{Continue: true, Reasoning: "last component, spend whatever remains"}
	}

	recentIterationTime := stats.RecentIterationTime(3)

	estimatedComponentTime := stats.AverageComponentTimeMs
	if estimatedComponentTime <= 0 {
		n := len(comp.SubQuestions)
		if n > 3 {
			n = 3
		}
		estimatedComponentTime = recentIterationTime * float64(n)
	}
	_ = estimatedComponentTime // retained for traceability/logging by callers

	reserveForOthers := float64(remainingCount) * recentIterationTime
	needed := recentIterationTime + reserveForOthers
	if float64(s.RemainingMs) >= needed {
		return SchedulingDecision{Continue: true, Reasoning: "enough time for one more iteration plus reserve for other components"}
	}

	if recentIterationTime > 0 && float64(s.RemainingMs)/float64(remainingCount) >= recentIterationTime {
		return SchedulingDecision{Continue: true, Minimal: true, Reasoning: "even split covers one iteration per remaining component"}
	}

	return SchedulingDecision{NeedsLLMDecision: true, Reasoning: "time too tight for a deterministic call"}
}

// Clamp restricts x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
