// Package traits maintains the agent's bounded personality weights and shifts
// them from experience outcomes. Applying the same experience record twice is
// safe: the engine tracks processed interaction ids so replays and retries
// never double-adjust a weight.
package traits

import (
	"fmt"
	"sort"

	"github.com/inwardlabs/psyche/pkg/experience"
)

// Canonical trait names seeded into every engine.
const (
	Resilience  = "resilience"
	Caution     = "caution"
	Empathy     = "empathy"
	Candor      = "candor"
	Curiosity   = "curiosity"
	Imagination = "imagination"
)

// Trait is one bounded personality weight.
type Trait struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Delta is one weight adjustment within an outcome's delta vector.
type Delta struct {
	Trait  string
	Amount float64
}

// DeltaVectors maps each outcome kind to its fixed trait adjustments.
type DeltaVectors map[experience.Outcome][]Delta

// DefaultDeltas returns the stock outcome-to-trait mapping.
func DefaultDeltas() DeltaVectors {
	return DeltaVectors{
		experience.OutcomeSuccess: {
			{Trait: Resilience, Amount: 0.04},
			{Trait: Caution, Amount: -0.01},
		},
		experience.OutcomeFailure: {
			{Trait: Caution, Amount: 0.05},
			{Trait: Resilience, Amount: -0.02},
		},
		experience.OutcomeFriction: {
			{Trait: Caution, Amount: 0.04},
			{Trait: Empathy, Amount: 0.02},
		},
		experience.OutcomeJoy: {
			{Trait: Empathy, Amount: 0.04},
			{Trait: Curiosity, Amount: 0.02},
		},
		experience.OutcomeDream: {
			{Trait: Imagination, Amount: 0.03},
		},
	}
}

// Engine holds the trait set. Not safe for concurrent use; mutation is
// serialized through the orchestrator.
type Engine struct {
	byName    map[string]*Trait
	deltas    DeltaVectors
	processed map[string]struct{}
}

// NewEngine seeds the canonical traits at weight 0.5 within [0,1] bounds.
func NewEngine(deltas DeltaVectors) *Engine {
	e := &Engine{
		byName:    make(map[string]*Trait),
		deltas:    deltas,
		processed: make(map[string]struct{}),
	}
	for _, name := range []string{Resilience, Caution, Empathy, Candor, Curiosity, Imagination} {
		e.byName[name] = &Trait{Name: name, Weight: 0.5, Min: 0, Max: 1}
	}
	return e
}

// Validate rejects delta vectors referencing unknown traits. Called at
// configuration time.
func (e *Engine) Validate() error {
	for outcome, deltas := range e.deltas {
		for _, d := range deltas {
			if _, ok := e.byName[d.Trait]; !ok {
				return fmt.Errorf("outcome %s adjusts unknown trait %q", outcome, d.Trait)
			}
		}
	}
	return nil
}

// Reinforce shifts a trait's weight by delta, clamped to the trait's bounds.
// Unknown traits are ignored.
func (e *Engine) Reinforce(name string, delta float64) {
	t, ok := e.byName[name]
	if !ok {
		return
	}
	t.Weight += delta
	if t.Weight < t.Min {
		t.Weight = t.Min
	}
	if t.Weight > t.Max {
		t.Weight = t.Max
	}
}

// ApplyExperience applies the outcome's delta vector once per interaction id.
// Returns false when the record was already processed.
func (e *Engine) ApplyExperience(rec experience.Record) bool {
	if _, done := e.processed[rec.InteractionID]; done {
		return false
	}
	e.processed[rec.InteractionID] = struct{}{}

	for _, d := range e.deltas[rec.Outcome] {
		e.Reinforce(d.Trait, d.Amount)
	}
	return true
}

// Top returns the k heaviest traits, weight descending, ties broken by name.
func (e *Engine) Top(k int) []Trait {
	all := e.Snapshot()
	sort.Slice(all, func(i, j int) bool {
		if all[i].Weight != all[j].Weight {
			return all[i].Weight > all[j].Weight
		}
		return all[i].Name < all[j].Name
	})
	if k > 0 && len(all) > k {
		all = all[:k]
	}
	return all
}

// Snapshot returns copies of all traits sorted by name.
func (e *Engine) Snapshot() []Trait {
	out := make([]Trait, 0, len(e.byName))
	for _, t := range e.byName {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Identity renders the identity line used in context payloads and reflection:
// the agent's strongest traits as a single sentence.
func (e *Engine) Identity() string {
	top := e.Top(3)
	if len(top) == 0 {
		return "I am still forming a sense of who I am."
	}
	names := make([]string, len(top))
	for i, t := range top {
		names[i] = t.Name
	}
	switch len(names) {
	case 1:
		return fmt.Sprintf("I believe I am: %s.", names[0])
	case 2:
		return fmt.Sprintf("I believe I am: %s and %s.", names[0], names[1])
	default:
		return fmt.Sprintf("I believe I am: %s, %s, and %s.", names[0], names[1], names[2])
	}
}
