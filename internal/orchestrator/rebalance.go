package orchestrator

import (
	"sort"

	"github.com/brucewavesmarket/open-deep-research/internal/research"
)

// Rebalance reorders plan.Sequencing by descending importance score and
// returns a per-component depth multiplier in [0.5, 2.0], computed as
// clamp(0.5 + (score/meanScore)*0.75, 0.5, 2.0). Per spec §9's noted
// ambiguity, meanScore is literally 100/len(components) rather than the
// actual mean of the returned scores, so scores from an LLM that ignores the
// "sum to ~100" hint shift every multiplier together; clamping bounds that
// skew. overrides, if non-nil, take
// precedence over the computed multiplier for any named component.
func Rebalance(plan *research.Plan, scores map[string]float64, overrides map[string]float64) map[string]float64 {
	if len(plan.Components) == 0 {
		return nil
	}

	sorted := append([]string(nil), plan.Sequencing...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return scores[sorted[i]] > scores[sorted[j]]
	})
	plan.Sequencing = sorted

	meanScore := 100.0 / float64(len(plan.Components))
	multipliers := make(map[string]float64, len(plan.Components))
	for _, c := range plan.Components {
		if ov, ok := overrides[c.Name]; ok {
			multipliers[c.Name] = research.Clamp(ov, 0.5, 2.0)
			continue
		}
		score := scores[c.Name]
		m := 0.5 + (score/meanScore)*0.75
		multipliers[c.Name] = research.Clamp(m, 0.5, 2.0)
	}
	return multipliers
}
