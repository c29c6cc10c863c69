// Package llmclient treats the LLM provider as the spec names it: "a
// capability to produce a JSON object matching a schema". It defines that
// capability as a narrow interface plus a generic helper that extracts and
// validates the JSON, so every call site in internal/orchestrator gets a
// typed value or a typed failure and never hand-parses a response.
package llmclient

import "context"

// Request is one LLM call: a system/user prompt pair and the shape the
// caller expects back, named for logging and model-tier routing.
type Request struct {
	AgentID      string
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// Response is the raw result of a call: free text that should contain an
// embedded JSON object, plus token accounting for observability.
type Response struct {
	Text         string
	Model        string
	Provider     string
	InputTokens  int
	OutputTokens int
}

// Client is the capability the orchestrator depends on. Implementations
// may call out to any provider; the only contract is "return text
// containing a JSON object matching what the prompt asked for".
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}
