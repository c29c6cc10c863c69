package llmclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Generate is the "centralize a generate<T>(schema, prompt) primitive"
// primitive named in spec §9: it makes the call, locates the embedded JSON
// object in the free-text response (the same strings.Index/LastIndex
// technique the teacher's research_plan.go and coverage_evaluator.go use
// against a chat-style LLM that wraps JSON in prose), and unmarshals it
// into T. It never returns a partially-parsed T: either T is fully valid
// or the zero value plus an error is returned, so every caller degrades to
// its own documented local fallback instead of trusting a half-parsed
// struct.
func Generate[T any](ctx context.Context, client Client, req Request) (T, error) {
	var zero T
	if client == nil {
		return zero, fmt.Errorf("llmclient: nil client")
	}
	resp, err := client.Generate(ctx, req)
	if err != nil {
		return zero, fmt.Errorf("llmclient: call failed: %w", err)
	}
	raw, err := extractJSONObject(resp.Text)
	if err != nil {
		return zero, fmt.Errorf("llmclient: %w", err)
	}
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return zero, fmt.Errorf("llmclient: response did not match expected schema: %w", err)
	}
	return out, nil
}

// extractJSONObject finds the outermost { ... } span in text and returns it.
// LLM responses routinely wrap the JSON payload in explanatory prose or a
// markdown code fence; this is tolerant of both.
func extractJSONObject(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return text[start : end+1], nil
}
