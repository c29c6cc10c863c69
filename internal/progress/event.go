package progress

import "time"

// Event is an opaque progress payload emitted by the orchestrator. Callers
// (the HTTP/SSE layer, a CLI, a test double) must tolerate unknown Type
// values — new tags can be added without breaking existing consumers.
type Event struct {
	RunID     string    `json:"run_id"`
	Type      string    `json:"type"`
	Component string    `json:"component,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Seq       uint64    `json:"seq"`
}

const (
	EventProgress           = "progress"
	EventPlanRevision       = "plan_revision"
	EventMidComponentResult = "mid_component_results"
	EventResearchSaturation = "research_saturation"
	EventComponentTiming    = "component_timing"
	EventTimeDecision       = "time_decision"
	EventResult             = "result"
	EventError              = "error"
)
