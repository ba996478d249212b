package engine

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inwardlabs/psyche/pkg/dream"
	"github.com/inwardlabs/psyche/pkg/drives"
	"github.com/inwardlabs/psyche/pkg/eventstream"
	"github.com/inwardlabs/psyche/pkg/experience"
	"github.com/inwardlabs/psyche/pkg/selfstate"
)

// IdleResult summarizes what one idle tick did.
type IdleResult struct {
	Tick        int    `json:"tick"`
	Maintained  bool   `json:"maintained"`
	Retired     int    `json:"retired"`
	Merged      int    `json:"merged"`
	Dreamed     bool   `json:"dreamed"`
	DreamMemory string `json:"dream_memory,omitempty"`
}

// IdleTick advances the mind through one unit of unattended time: energy
// recovers, drives drift, periodic maintenance decays and reconciles
// long-term memory, and a boredom-raised dream intent may trigger a cycle.
func (m *Mind) IdleTick(ctx context.Context) (IdleResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.idleTicks++
	result := IdleResult{Tick: m.idleTicks}

	m.self = selfstate.Recover(m.self, m.cfg.SelfParams)
	m.drives.Tick(drives.Signals{Idle: true})

	if m.idleTicks%m.cfg.MaintenanceEvery == 0 {
		result.Maintained = true

		retired, err := m.ltm.DecayPass(ctx, m.now())
		if err != nil {
			return result, err
		}
		result.Retired = retired

		merged, err := m.ltm.Reconcile(ctx)
		if err != nil {
			return result, err
		}
		result.Merged = merged

		if retired > 0 || merged > 0 {
			m.logger.Info("memory maintenance pass",
				zap.Int("retired", retired),
				zap.Int("merged", merged),
			)
		}
	}

	for _, intent := range m.drives.Intents() {
		if intent != drives.IntentDream {
			continue
		}
		dreamResult, err := m.runDream(ctx, false)
		if err != nil {
			// A blocked dream is routine while idle; the intent stays
			// raised and a later tick retries.
			if errors.Is(err, dream.ErrLowEnergy) || errors.Is(err, dream.ErrInsufficientMemories) {
				break
			}
			return result, err
		}
		result.Dreamed = true
		result.DreamMemory = dreamResult.Item.Text
		break
	}

	return result, nil
}

// Dream forces a dream cycle regardless of drive state or energy; only the
// minimum memory count still applies. Intent-driven idle dreams keep the
// energy gate.
func (m *Mind) Dream(ctx context.Context) (dream.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runDream(ctx, true)
}

// runDream executes one cycle and integrates the result: the dream becomes a
// long-term memory, shifts mood by its valence, nudges imagination, collapses
// boredom, and is announced on the event stream. Callers hold mu.
func (m *Mind) runDream(ctx context.Context, forced bool) (dream.Result, error) {
	items, err := m.ltm.All(ctx)
	if err != nil {
		return dream.Result{}, err
	}

	// Sampling leans toward what currently occupies the mind: the dominant
	// drive and active goals.
	hints := append([]string{m.drives.Dominant().Name}, m.goals.TagHints()...)

	result, err := m.weaver.RunCycle(ctx, items, dream.Request{
		Energy:   m.self.Energy,
		Forced:   forced,
		TagHints: hints,
	})
	if err != nil {
		return dream.Result{}, err
	}

	if err := m.ltm.Promote(ctx, result.Item); err != nil {
		return dream.Result{}, err
	}
	if m.recall != nil {
		if err := m.recall.Add(ctx, result.Item); err != nil {
			m.logger.Warn("indexing dream memory failed",
				zap.String("item_id", result.Item.ID),
				zap.Error(err),
			)
		}
	}

	rec := experience.NewRecord(result.Item.ID, experience.OutcomeDream, result.Theme)
	m.expLog.Append(rec)
	m.traits.ApplyExperience(rec)

	m.self = selfstate.ShiftToward(m.self, result.Valence)
	m.drives.Tick(drives.Signals{Idle: true, DreamCompleted: true})
	m.lastDream = &result

	m.publishDream(ctx, result)

	m.logger.Info("dream integrated",
		zap.String("theme", result.Theme),
		zap.Float64("valence", result.Valence),
		zap.String("memory_id", result.Item.ID),
	)

	return result, nil
}

// publishDream emits the dream event. Best effort only.
func (m *Mind) publishDream(ctx context.Context, result dream.Result) {
	event := &eventstream.DreamIntegratedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeDreamIntegrated,
		EventID:       uuid.NewString(),
		EmittedAt:     m.now(),
		Dream: eventstream.DreamMeta{
			Theme:      result.Theme,
			Valence:    result.Valence,
			SampledIDs: result.Sampled,
			MemoryID:   result.Item.ID,
		},
	}

	if err := m.publisher.PublishDream(ctx, event); err != nil {
		m.logger.Warn("publishing dream event failed",
			zap.Error(err),
		)
	}
}
