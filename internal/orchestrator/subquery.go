package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/brucewavesmarket/open-deep-research/internal/config"
	"github.com/brucewavesmarket/open-deep-research/internal/llmclient"
	"github.com/brucewavesmarket/open-deep-research/internal/research"
)

// SubQuery is one generated search query with the LLM's reasoning for it.
type SubQuery struct {
	Query     string `json:"query"`
	Reasoning string `json:"reasoning"`
}

type subQueryLLMSchema struct {
	Queries []SubQuery `json:"queries"`
}

// GenerateSubQueries produces up to count search queries, each 2-5 words,
// with no quoted strings and no site: operator outside the allowlist
// (spec §4.9). Queries are biased toward criteria whose gap entry is not
// one of the reserved neutral values. If the main topic is not already
// present in the active query, the system prompt tells the LLM to
// include it; the query itself is not modified.
func GenerateSubQueries(ctx context.Context, llm llmclient.Client, query string, recentLearnings []string, mainTopic string, componentContext string, gaps research.GapMap, count int, logger *zap.Logger) []SubQuery {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowList, err := config.LoadSiteAllowList()
	if err != nil || allowList == nil {
		allowList = &config.SiteAllowList{AllowedSites: []string{"reddit.com", "quora.com"}}
	}

	biasedCriteria := gaps.NonNeutral()
	learnings := recentLearnings
	if len(learnings) > 7 {
		learnings = learnings[len(learnings)-7:]
	}

	topicHint := ""
	if mainTopic != "" && !strings.Contains(strings.ToLower(query), strings.ToLower(mainTopic)) {
		topicHint = fmt.Sprintf(" The query must include the main topic %q.", mainTopic)
	}

	out, err := llmclient.Generate[subQueryLLMSchema](ctx, llm, llmclient.Request{
		AgentID: "research-subquery-generator",
		SystemPrompt: fmt.Sprintf(
			"Generate up to %d focused web search queries, each exactly 2 to 5 whitespace-separated "+
				"words, no quoted phrases, no search operators except site:%s. Bias queries toward the "+
				"listed gap criteria when present.%s Respond with JSON matching "+
				`{"queries": [{"query", "reasoning"}]}.`,
			count, strings.Join(allowList.AllowedSites, " or site:"), topicHint,
		),
		UserPrompt: fmt.Sprintf("Current query: %s\nComponent context: %s\nRecent learnings: %v\nGap criteria: %v",
			query, componentContext, learnings, biasedCriteria),
		MaxTokens:   512,
		Temperature: 0.4,
	})
	if err != nil {
		logger.Warn("subquery generator: LLM call failed, falling back to bare query", zap.Error(err))
		return []SubQuery{{Query: query, Reasoning: "LLM unavailable, using original query"}}
	}

	valid := make([]SubQuery, 0, count)
	for _, q := range out.Queries {
		if len(valid) >= count {
			break
		}
		if sanitized, ok := validateSubQuery(q.Query, allowList); ok {
			valid = append(valid, SubQuery{Query: sanitized, Reasoning: q.Reasoning})
		}
	}
	if len(valid) == 0 {
		return []SubQuery{{Query: query, Reasoning: "no valid LLM sub-queries, using original query"}}
	}
	return valid
}

// validateSubQuery enforces spec §4.9's output contract: 2-5 words, no
// quotes, no site: operator outside the allowlist.
func validateSubQuery(q string, allowList *config.SiteAllowList) (string, bool) {
	q = strings.TrimSpace(q)
	if strings.ContainsAny(q, `"'`) {
		return "", false
	}
	words := strings.Fields(q)
	if len(words) < 2 || len(words) > 5 {
		return "", false
	}
	for _, w := range words {
		if !strings.HasPrefix(w, "site:") {
			continue
		}
		site := strings.TrimPrefix(w, "site:")
		if !allowList.IsAllowedSite(site) {
			return "", false
		}
	}
	return q, true
}
