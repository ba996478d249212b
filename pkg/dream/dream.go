// Package dream implements the offline consolidation cycle: while idle, the
// mind samples long-term memories, recombines them under a theme, and
// produces a new memory for integration.
//
// A cycle is atomic. The weaver itself mutates nothing but its phase; all
// state effects happen when the orchestrator integrates the returned result.
// A cycle interrupted by context cancellation is discarded whole.
package dream

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"github.com/inwardlabs/psyche/pkg/memory"
)

// Phase is the observable state of the dream cycle.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseDreaming    Phase = "dreaming"
	PhaseIntegrating Phase = "integrating"
)

var (
	// ErrInsufficientMemories aborts a cycle silently when long-term memory
	// holds too few items to recombine.
	ErrInsufficientMemories = errors.New("not enough memories to dream")

	// ErrLowEnergy aborts a cycle when the agent is too drained to dream.
	ErrLowEnergy = errors.New("energy too low to dream")
)

// Params tunes the dream cycle.
type Params struct {
	// SampleSize is how many memories each dream recombines.
	SampleSize int

	// MinEnergy gates dreaming; below it unforced cycles abort with
	// ErrLowEnergy.
	MinEnergy float64

	// Importance assigned to the dream memory itself.
	DreamImportance float64

	// TagAffinity is the sampling weight added per tag an item shares with
	// the request's hints, on top of the item's importance.
	TagAffinity float64
}

// DefaultParams returns the stock dream tunables.
func DefaultParams() Params {
	return Params{
		SampleSize:      3,
		MinEnergy:       0.35,
		DreamImportance: 0.6,
		TagAffinity:     0.2,
	}
}

// Request carries the situational inputs for one cycle.
type Request struct {
	// Energy at the time of the request. Below MinEnergy the cycle aborts
	// unless Forced.
	Energy float64

	// Forced skips the energy gate. The explicit dream command sets it; the
	// minimum memory count still applies.
	Forced bool

	// TagHints bias sampling toward memories sharing tags with the dominant
	// drive and active goals.
	TagHints []string
}

// Theme colors a dream and shifts mood by its valence on integration.
type Theme struct {
	Name    string
	Valence float64
}

// DefaultThemes returns the stock theme palette.
func DefaultThemes() []Theme {
	return []Theme{
		{Name: "flying over familiar places", Valence: 0.5},
		{Name: "a quiet shoreline at dusk", Valence: 0.4},
		{Name: "wandering an endless library", Valence: 0.3},
		{Name: "a conversation that never ended", Valence: 0.1},
		{Name: "searching for a door that keeps moving", Valence: -0.3},
		{Name: "losing something important", Valence: -0.4},
	}
}

// Result is one completed dream, ready for integration.
type Result struct {
	// Item is the composed dream memory. Its provenance lists the sampled
	// item ids.
	Item memory.Item

	// Theme that colored the dream.
	Theme string

	// Valence shifts mood one step on integration.
	Valence float64

	// Sampled ids the dream drew from.
	Sampled []string
}

// Weaver runs dream cycles. Not safe for concurrent use; the orchestrator
// serializes access.
type Weaver struct {
	params Params
	themes []Theme
	rng    *rand.Rand
	phase  Phase
	logger *zap.Logger
}

// NewWeaver creates a weaver. The rng is injected so cycles are replayable in
// tests.
func NewWeaver(params Params, themes []Theme, rng *rand.Rand, logger *zap.Logger) (*Weaver, error) {
	if params.SampleSize < 1 {
		return nil, fmt.Errorf("sample size must be at least 1, got %d", params.SampleSize)
	}
	if params.TagAffinity < 0 {
		return nil, fmt.Errorf("tag affinity must not be negative, got %v", params.TagAffinity)
	}
	if len(themes) == 0 {
		return nil, fmt.Errorf("at least one theme is required")
	}
	return &Weaver{
		params: params,
		themes: themes,
		rng:    rng,
		phase:  PhaseIdle,
		logger: logger,
	}, nil
}

// Phase reports the current cycle phase.
func (w *Weaver) Phase() Phase {
	return w.phase
}

// RunCycle samples from the given memories and composes a dream. Unforced
// cycles below the energy gate abort. Cancellation between phases discards the
// cycle with no partial effects.
func (w *Weaver) RunCycle(ctx context.Context, items []memory.Item, req Request) (Result, error) {
	w.phase = PhaseIdle

	if !req.Forced && req.Energy < w.params.MinEnergy {
		return Result{}, ErrLowEnergy
	}

	eligible := make([]memory.Item, 0, len(items))
	for _, item := range items {
		if !item.Retired() {
			eligible = append(eligible, item)
		}
	}
	if len(eligible) < w.params.SampleSize {
		return Result{}, ErrInsufficientMemories
	}

	w.phase = PhaseDreaming
	sampled := w.sample(eligible, req.TagHints)

	if err := ctx.Err(); err != nil {
		w.phase = PhaseIdle
		return Result{}, err
	}

	w.phase = PhaseIntegrating
	theme := w.themes[w.rng.Intn(len(w.themes))]

	fragments := make([]string, len(sampled))
	ids := make([]string, len(sampled))
	for i, item := range sampled {
		fragments[i] = strings.TrimRight(strings.TrimSpace(item.Text), ".!?")
		ids[i] = item.ID
	}

	text := fmt.Sprintf("I dreamed of %s. Fragments surfaced: %s.",
		theme.Name, strings.Join(fragments, "; "))

	dreamItem := memory.NewItem(memory.SpeakerAgent, text, []string{"dream"}, w.params.DreamImportance)
	dreamItem.Provenance = ids

	w.phase = PhaseIdle

	w.logger.Debug("dream cycle completed",
		zap.String("theme", theme.Name),
		zap.Strings("sampled", ids),
	)

	return Result{
		Item:    dreamItem,
		Theme:   theme.Name,
		Valence: theme.Valence,
		Sampled: ids,
	}, nil
}

// sample draws SampleSize items without replacement, weighted by importance
// plus tag affinity toward the hints. Zero-weight items still carry a small
// floor so they stay reachable.
func (w *Weaver) sample(items []memory.Item, hints []string) []memory.Item {
	pool := append([]memory.Item(nil), items...)
	picked := make([]memory.Item, 0, w.params.SampleSize)

	for len(picked) < w.params.SampleSize && len(pool) > 0 {
		var total float64
		for _, item := range pool {
			total += w.weight(item, hints)
		}

		r := w.rng.Float64() * total
		idx := len(pool) - 1
		for i, item := range pool {
			r -= w.weight(item, hints)
			if r <= 0 {
				idx = i
				break
			}
		}

		picked = append(picked, pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
	}

	return picked
}

func (w *Weaver) weight(item memory.Item, hints []string) float64 {
	weight := item.Importance + 0.05
	for _, hint := range hints {
		if item.HasTag(hint) {
			weight += w.params.TagAffinity
		}
	}
	return weight
}
