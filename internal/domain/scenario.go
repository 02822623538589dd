package domain

import (
	"encoding/json"
	"time"
)

// ReferencedStandards summarises what each standard contributes to a scenario.
type ReferencedStandards struct {
	PMBOK   string `json:"PMBOK"`
	PRINCE2 string `json:"PRINCE2"`
	ISO     string `json:"ISO"`
}

// Phase is one stage of a tailored process.
type Phase struct {
	Name          string   `json:"name"`
	Activities    []string `json:"activities"`
	Deliverables  []string `json:"deliverables"`
	Roles         []string `json:"roles"`
	DecisionGates []string `json:"decisionGates"`
}

// Scenario is a tailored project-type template.
type Scenario struct {
	// Type is a short slug ("construction"), also used to name diagram assets.
	Type string `json:"type,omitempty"`
	// Name is the identity of the scenario.
	Name string `json:"name"`
	// Title is an optional display alias, matched like Type and Name.
	Title string `json:"title,omitempty"`

	Summary   string `json:"summary"`
	Context   string `json:"context"`
	Objective string `json:"objective"`

	ReferencedStandards    ReferencedStandards `json:"referencedStandards"`
	Phases                 []Phase             `json:"phases"`
	TailoringJustification string              `json:"tailoringJustification"`

	// Steps and Mapping predate Phases and are kept for old clients only.
	Steps   []string        `json:"steps,omitempty"`
	Mapping json.RawMessage `json:"mapping,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// Identifier is what clients are offered when a lookup misses:
// the type slug when present, the name otherwise.
func (s *Scenario) Identifier() string {
	if s.Type != "" {
		return s.Type
	}
	return s.Name
}

// Normalize replaces nil lists with empty ones so renderers can iterate
// every phase field unconditionally.
func (s *Scenario) Normalize() {
	if s.Phases == nil {
		s.Phases = []Phase{}
	}
	for i := range s.Phases {
		p := &s.Phases[i]
		p.Activities = nonNil(p.Activities)
		p.Deliverables = nonNil(p.Deliverables)
		p.Roles = nonNil(p.Roles)
		p.DecisionGates = nonNil(p.DecisionGates)
	}
}

// Restamp follows the same rules as Topic.Restamp.
func (s *Scenario) Restamp(prev *Scenario, now time.Time) {
	if prev == nil {
		s.CreatedAt, s.UpdatedAt = now, now
		return
	}
	s.CreatedAt = prev.CreatedAt
	a, b := *s, *prev
	a.CreatedAt, a.UpdatedAt = time.Time{}, time.Time{}
	b.CreatedAt, b.UpdatedAt = time.Time{}, time.Time{}
	if sameJSON(a, b) {
		s.UpdatedAt = prev.UpdatedAt
		return
	}
	s.UpdatedAt = now
}

// Process is the public view of a scenario. Only these fields are exposed;
// summary, legacy fields and timestamps stay internal.
type Process struct {
	Type                   string              `json:"type"`
	Title                  string              `json:"title"`
	Context                string              `json:"context"`
	Objective              string              `json:"objective"`
	ReferencedStandards    ReferencedStandards `json:"referencedStandards"`
	Phases                 []Phase             `json:"phases"`
	TailoringJustification string              `json:"tailoringJustification"`
}

// Process projects s into its public view.
func (s *Scenario) Process() Process {
	phases := s.Phases
	if phases == nil {
		phases = []Phase{}
	}
	return Process{
		Type:                   s.Identifier(),
		Title:                  s.Name,
		Context:                s.Context,
		Objective:              s.Objective,
		ReferencedStandards:    s.ReferencedStandards,
		Phases:                 phases,
		TailoringJustification: s.TailoringJustification,
	}
}

// ScenarioBrief is the entry used to populate scenario pickers.
type ScenarioBrief struct {
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Title   string `json:"title,omitempty"`
	Summary string `json:"summary,omitempty"`
}

func (s *Scenario) Brief() ScenarioBrief {
	return ScenarioBrief{
		Name:    s.Name,
		Type:    s.Type,
		Title:   s.Title,
		Summary: s.Summary,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
