// Package research defines the plain data model the orchestrator operates
// on: the research plan, per-component results, the wall-clock time state,
// rolling timing statistics, gap maps, and saturation results. These are
// value types owned exclusively by the orchestrator (spec §9's "the
// orchestrator is the sole owner") — no type here takes a lock, because
// nothing outside the main control loop ever mutates one concurrently.
package research

import "fmt"

// Component is a named slice of the research plan with its own
// sub-questions and success criteria.
type Component struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	SubQuestions    []string `json:"subQuestions"`
	SuccessCriteria []string `json:"successCriteria"`
}

// Plan is the Planner's output: a main objective, the components to
// research, their sequencing, and candidate pivot directions.
type Plan struct {
	MainObjective   string      `json:"mainObjective"`
	Components      []Component `json:"components"`
	Sequencing      []string    `json:"sequencing"`
	PotentialPivots []string    `json:"potentialPivots"`
}

// Validate checks the invariants from the data model table: sequencing is a
// permutation of component names, components are uniquely named, every
// component has at least one sub-question and one success criterion, and
// there is at least one component.
func (p *Plan) Validate() error {
	if len(p.Components) == 0 {
		return fmt.Errorf("plan has no components")
	}
	seen := make(map[string]bool, len(p.Components))
	for _, c := range p.Components {
		if c.Name == "" {
			return fmt.Errorf("component has empty name")
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate component name %q", c.Name)
		}
		seen[c.Name] = true
		if len(c.SubQuestions) == 0 {
			return fmt.Errorf("component %q has no sub-questions", c.Name)
		}
		if len(c.SuccessCriteria) == 0 {
			return fmt.Errorf("component %q has no success criteria", c.Name)
		}
	}
	if len(p.Sequencing) != len(p.Components) {
		return fmt.Errorf("sequencing length %d does not match component count %d", len(p.Sequencing), len(p.Components))
	}
	seqSeen := make(map[string]bool, len(p.Sequencing))
	for _, name := range p.Sequencing {
		if !seen[name] {
			return fmt.Errorf("sequencing references unknown component %q", name)
		}
		if seqSeen[name] {
			return fmt.Errorf("sequencing contains duplicate %q", name)
		}
		seqSeen[name] = true
	}
	return nil
}

// ComponentByName returns the component with the given name, or nil.
func (p *Plan) ComponentByName(name string) *Component {
	for i := range p.Components {
		if p.Components[i].Name == name {
			return &p.Components[i]
		}
	}
	return nil
}

// BasicPlan returns the minimal valid plan the Planner falls back to on LLM
// failure: a single "Basic Research" component whose sub-question is the
// original query (spec §4.1).
func BasicPlan(query string) Plan {
	return Plan{
		MainObjective: query,
		Components: []Component{{
			Name:            "Basic Research",
			Description:     "Direct research into the original query.",
			SubQuestions:    []string{query},
			SuccessCriteria: []string{"Answers the original query"},
		}},
		Sequencing: []string{"Basic Research"},
	}
}
