package searchclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/brucewavesmarket/open-deep-research/internal/metrics"
	"github.com/brucewavesmarket/open-deep-research/internal/resilience"
	"github.com/brucewavesmarket/open-deep-research/internal/telemetry"
)

// HTTPClient calls a Firecrawl-shaped search/scrape HTTP service: the same
// {query, timeout, limit, scrapeOptions:{formats}} in, {data:[{url,
// markdown}]} out contract the teacher's search_router.go routes work
// products for, minus the dimension/source-type routing machinery, which
// belongs to a multi-source aggregator this orchestrator does not run.
type HTTPClient struct {
	baseURL string
	apiKey  string
	http    *resilience.HTTPWrapper
	logger  *zap.Logger
}

// NewHTTPClient builds a client against baseURL (default from
// SEARCH_SERVICE_URL, falling back to http://search-service:8000).
func NewHTTPClient(baseURL, apiKey string, wrapper *resilience.HTTPWrapper, logger *zap.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = os.Getenv("SEARCH_SERVICE_URL")
	}
	if baseURL == "" {
		baseURL = "http://search-service:8000"
	}
	if wrapper == nil {
		wrapper = resilience.NewHTTPWrapper(&http.Client{Timeout: 20 * time.Second}, "search-service", 0, 0, logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{baseURL: baseURL, apiKey: apiKey, http: wrapper, logger: logger}
}

type searchRequestBody struct {
	Query         string        `json:"query"`
	TimeoutMs     int           `json:"timeout"`
	Limit         int           `json:"limit"`
	ScrapeOptions ScrapeOptions `json:"scrapeOptions"`
}

type searchResponseBody struct {
	Data []struct {
		URL      string `json:"url"`
		Markdown string `json:"markdown"`
	} `json:"data"`
}

const defaultSearchTimeoutSeconds = 15 // spec §5's "search default 15s"

// Search implements Client.
func (c *HTTPClient) Search(ctx context.Context, req Request) ([]Page, error) {
	timeoutSeconds := req.Timeout
	if timeoutSeconds <= 0 {
		timeoutSeconds = defaultSearchTimeoutSeconds
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 5
	}
	scrape := req.ScrapeOptions
	if len(scrape.Formats) == 0 {
		scrape.Formats = []string{"markdown"}
	}

	body, err := json.Marshal(searchRequestBody{
		Query:         req.Query,
		TimeoutMs:     timeoutSeconds * 1000,
		Limit:         limit,
		ScrapeOptions: scrape,
	})
	if err != nil {
		return nil, fmt.Errorf("searchclient: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("searchclient: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	spanCtx, span := telemetry.StartHTTPSpan(ctx, http.MethodPost, c.baseURL+"/search")
	httpReq = httpReq.WithContext(spanCtx)
	telemetry.InjectTraceparent(spanCtx, httpReq)

	httpResp, err := c.http.Do(httpReq)
	span.End()
	metrics.RecordSearchCall(err)
	if err != nil {
		if c.http.State() == resilience.StateOpen {
			metrics.RecordCircuitBreakerTrip("search-service")
		}
		c.logger.Warn("search call failed", zap.String("query", req.Query), zap.Error(err))
		return nil, fmt.Errorf("searchclient: request failed: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("searchclient: read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("searchclient: unexpected status %d: %s", httpResp.StatusCode, string(raw))
	}

	var parsed searchResponseBody
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("searchclient: decode response: %w", err)
	}

	pages := make([]Page, 0, len(parsed.Data))
	for _, d := range parsed.Data {
		if d.URL == "" {
			continue
		}
		pages = append(pages, Page{URL: d.URL, Markdown: d.Markdown})
	}
	return pages, nil
}
