package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/brucewavesmarket/open-deep-research/internal/config"
	"github.com/brucewavesmarket/open-deep-research/internal/llmclient"
	"github.com/brucewavesmarket/open-deep-research/internal/metrics"
	"github.com/brucewavesmarket/open-deep-research/internal/research"
	"github.com/brucewavesmarket/open-deep-research/internal/searchclient"
)

type summarizeLLMSchema struct {
	Learnings []string `json:"learnings"`
}

// DeepResearchOutcome is the accumulated result of running the §4.7
// sub-routine for one active query across up to `depth` iterations.
type DeepResearchOutcome struct {
	Learnings  []string
	VisitedURLs []string
	ShouldContinue bool
	TimeSpentMs int64
}

// DeepResearch runs up to depth iterations for query, each generating up
// to breadth sub-queries, searching, summarizing, analyzing, and
// re-evaluating saturation after the first iteration (spec §4.7).
func DeepResearch(ctx context.Context, llm llmclient.Client, search searchclient.Client, query string, comp research.Component, result *research.ComponentResult, breadth, depth int, remainingMs int64, cfg config.ResearchConfig, gaps research.GapMap, logger *zap.Logger) DeepResearchOutcome {
	if logger == nil {
		logger = zap.NewNop()
	}

	activeQuery := query
	outcome := DeepResearchOutcome{ShouldContinue: true}
	started := time.Now()

	for iter := 0; iter < depth; iter++ {
		elapsed := time.Since(started).Milliseconds()
		if remainingMs-elapsed < 20000 {
			break
		}
		metrics.IterationsRun.Inc()

		subQueries := GenerateSubQueries(ctx, llm, activeQuery, result.Learnings, comp.Name, comp.Description, gaps, breadth, logger)

		var allPages []searchclient.Page
		for _, sq := range subQueries {
			pages, err := runSearchWithFallback(ctx, search, sq.Query, cfg, logger)
			if err != nil {
				logger.Warn("deep research: search failed", zap.String("query", sq.Query), zap.Error(err))
				continue
			}
			allPages = append(allPages, pages...)
		}
		allPages = searchclient.DedupePages(allPages)

		var bodies []string
		var urls []string
		for _, p := range allPages {
			if !searchclient.HasSubstantialContent(p) {
				continue
			}
			bodies = append(bodies, trimContent(p.Markdown, cfg.PerContentTrimSize, cfg.MinTrimChunk))
			urls = append(urls, p.URL)
		}
		outcome.VisitedURLs = append(outcome.VisitedURLs, urls...)

		learnings := summarizeLearnings(ctx, llm, activeQuery, bodies, logger)
		outcome.Learnings = append(outcome.Learnings, learnings...)
		result.AppendLearnings(learnings...)
		result.AppendURLs(urls...)

		analysis := AnalyzeAndPlan(ctx, llm, activeQuery, bodies, logger)
		if !analysis.ShouldContinue {
			outcome.ShouldContinue = false
			break
		}
		if analysis.NextSearchTopic != "" {
			activeQuery = analysis.NextSearchTopic
		}

		if iter > 0 {
			sat := EvaluateSaturation(ctx, llm, comp, *result, iter+1, depth, logger)
			if sat.IsSaturated || sat.CoveragePercentage >= 65 {
				break
			}
		}
	}

	outcome.TimeSpentMs = time.Since(started).Milliseconds()
	return outcome
}

// runSearchWithFallback searches query; if no returned page clears the
// substantial-content threshold, it strips site:/quote operators and
// truncates to the first fallbackMaxWords words, retries once, and gives
// up if that also comes back empty (spec §4.7 step 3).
func runSearchWithFallback(ctx context.Context, search searchclient.Client, query string, cfg config.ResearchConfig, logger *zap.Logger) ([]searchclient.Page, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	req := searchclient.Request{Query: query, Timeout: 15, Limit: 5, ScrapeOptions: searchclient.ScrapeOptions{Formats: []string{"markdown"}}}
	pages, err := search.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	if searchclient.AnySubstantial(pages) {
		return pages, nil
	}
	metrics.SearchEmptyResults.Inc()

	fallback := simplifyQuery(query, cfg.FallbackQueryMaxWords)
	if fallback == query {
		return pages, nil
	}
	metrics.SubQueryFallbacks.Inc()
	logger.Info("deep research: empty results, retrying with simplified query", zap.String("original", query), zap.String("fallback", fallback))
	retryReq := req
	retryReq.Query = fallback
	retryPages, err := search.Search(ctx, retryReq)
	if err != nil {
		return pages, nil
	}
	return retryPages, nil
}

// simplifyQuery strips quote and site: operators and truncates to the
// first maxWords words.
func simplifyQuery(query string, maxWords int) string {
	words := strings.Fields(query)
	stripped := make([]string, 0, len(words))
	for _, w := range words {
		if strings.HasPrefix(w, "site:") || strings.ContainsAny(w, `"'`) {
			continue
		}
		stripped = append(stripped, w)
	}
	if len(stripped) > maxWords {
		stripped = stripped[:maxWords]
	}
	return strings.Join(stripped, " ")
}

// trimContent clamps a scraped page body to maxLen, never trimming below
// minChunk so a short but valid body is never discarded entirely.
func trimContent(body string, maxLen, minChunk int) string {
	if len(body) <= maxLen {
		return body
	}
	cut := maxLen
	if cut < minChunk {
		cut = minChunk
	}
	if cut > len(body) {
		cut = len(body)
	}
	return body[:cut]
}

func summarizeLearnings(ctx context.Context, llm llmclient.Client, query string, bodies []string, logger *zap.Logger) []string {
	if len(bodies) == 0 {
		return nil
	}
	out, err := llmclient.Generate[summarizeLLMSchema](ctx, llm, llmclient.Request{
		AgentID: "research-summarizer",
		SystemPrompt: "Summarize the given search results into at most 5 concise, factual learnings " +
			`relevant to the query. Respond with JSON matching {"learnings": [string]}.`,
		UserPrompt:  fmt.Sprintf("Query: %s\nResults:\n%s", query, strings.Join(bodies, "\n---\n")),
		MaxTokens:   1024,
		Temperature: 0.2,
	})
	if err != nil {
		logger.Warn("summarizer: LLM call failed, no learnings extracted", zap.Error(err))
		return nil
	}
	if len(out.Learnings) > 5 {
		out.Learnings = out.Learnings[:5]
	}
	return out.Learnings
}
