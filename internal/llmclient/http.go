package llmclient

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

// HTTPClient calls an LLM provider exposed as an HTTP microservice, the
// same shape the teacher's internal/activities/research_plan.go and
// coverage_evaluator.go POST to: {query, max_tokens, temperature, agent_id,
// context:{system_prompt}} in, {success, response, metadata:{input_tokens,
// output_tokens}, model_used, provider} out.
type HTTPClient struct {
	baseURL string
	http    *resilience.HTTPWrapper
	logger  *zap.Logger
}

// NewHTTPClient builds a client against baseURL (default from
// LLM_SERVICE_URL, falling back to http://llm-service:8000 exactly as the
// teacher's activities do).
func NewHTTPClient(baseURL string, wrapper *resilience.HTTPWrapper, logger *zap.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = os.Getenv("LLM_SERVICE_URL")
	}
	if baseURL == "" {
		baseURL = "http://llm-service:8000"
	}
	if wrapper == nil {
		wrapper = resilience.NewHTTPWrapper(&http.Client{Timeout: 30 * time.Second}, "llm-service", 0, 0, logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{baseURL: baseURL, http: wrapper, logger: logger}
}

type llmRequestEnvelope struct {
	Query       string                 `json:"query"`
	MaxTokens   int                    `json:"max_tokens"`
	Temperature float64                `json:"temperature"`
	AgentID     string                 `json:"agent_id"`
	Context     map[string]interface{} `json:"context"`
}

type llmResponseEnvelope struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
	Metadata struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"metadata"`
	ModelUsed string `json:"model_used"`
	Provider  string `json:"provider"`
}

// Generate implements Client.
func (c *HTTPClient) Generate(ctx context.Context, req Request) (Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	envelope := llmRequestEnvelope{
		Query:       req.UserPrompt,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		AgentID:     req.AgentID,
		Context:     map[string]interface{}{"system_prompt": req.SystemPrompt},
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return Response{}, fmt.Errorf("llmclient: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/agent/query", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("llmclient: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	spanCtx, span := telemetry.StartHTTPSpan(ctx, http.MethodPost, c.baseURL+"/agent/query")
	httpReq = httpReq.WithContext(spanCtx)
	telemetry.InjectTraceparent(spanCtx, httpReq)

	httpResp, err := c.http.Do(httpReq)
	span.End()
	if err != nil {
		if c.http.State() == resilience.StateOpen {
			metrics.RecordCircuitBreakerTrip("llm-service")
		}
		c.logger.Warn("llm call failed", zap.String("agent_id", req.AgentID), zap.Error(err))
		return Response{}, fmt.Errorf("llmclient: request failed: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("llmclient: read response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("llmclient: unexpected status %d: %s", httpResp.StatusCode, string(raw))
	}

	var env llmResponseEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Response{}, fmt.Errorf("llmclient: decode envelope: %w", err)
	}
	if !env.Success {
		return Response{}, fmt.Errorf("llmclient: provider reported failure")
	}

	return Response{
		Text:         env.Response,
		Model:        env.ModelUsed,
		Provider:     env.Provider,
		InputTokens:  env.Metadata.InputTokens,
		OutputTokens: env.Metadata.OutputTokens,
	}, nil
}
