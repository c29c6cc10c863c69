package orchestrator

import "errors"

// Fatal errors per spec §7: everything else degrades to a local fallback
// and is logged, never propagated.
var (
	ErrInvalidInput  = errors.New("orchestrator: invalid input")
	ErrNoLLMClient   = errors.New("orchestrator: no LLM client configured")
	ErrNoSearchClient = errors.New("orchestrator: no search client configured")
)
