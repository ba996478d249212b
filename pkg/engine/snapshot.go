package engine

import (
	"context"

	"github.com/inwardlabs/psyche/pkg/dream"
	"github.com/inwardlabs/psyche/pkg/drives"
	"github.com/inwardlabs/psyche/pkg/experience"
	"github.com/inwardlabs/psyche/pkg/goals"
	"github.com/inwardlabs/psyche/pkg/memory"
	"github.com/inwardlabs/psyche/pkg/traits"
)

// Snapshot is a deep copy of the mind's observable state, safe to serve and
// serialize after the lock is released.
type Snapshot struct {
	Mood       string  `json:"mood"`
	Energy     float64 `json:"energy"`
	Confidence float64 `json:"confidence"`

	ShortTerm     []memory.Item `json:"short_term"`
	LongTermCount int           `json:"long_term_count"`

	Drives []drives.Drive `json:"drives"`
	Traits []traits.Trait `json:"traits"`
	Goals  []goals.Goal   `json:"goals"`

	Trend map[experience.Outcome]float64 `json:"trend"`

	DreamPhase dream.Phase   `json:"dream_phase"`
	LastDream  *dream.Result `json:"last_dream,omitempty"`

	IdleTicks int `json:"idle_ticks"`
}

// Snapshot captures the current state. Slices and maps are copies; callers
// can hold the result indefinitely.
func (m *Mind) Snapshot(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count, err := m.ltm.Len(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	var lastDream *dream.Result
	if m.lastDream != nil {
		copied := *m.lastDream
		copied.Item = m.lastDream.Item.Clone()
		copied.Sampled = append([]string(nil), m.lastDream.Sampled...)
		lastDream = &copied
	}

	return Snapshot{
		Mood:          string(m.self.Mood),
		Energy:        m.self.Energy,
		Confidence:    m.self.Confidence,
		ShortTerm:     m.stm.Snapshot(),
		LongTermCount: count,
		Drives:        m.drives.Snapshot(),
		Traits:        m.traits.Snapshot(),
		Goals:         m.goals.All(),
		Trend:         m.expLog.RecentTrend(m.cfg.TrendWindow),
		DreamPhase:    m.weaver.Phase(),
		LastDream:     lastDream,
		IdleTicks:     m.idleTicks,
	}, nil
}

// QueryMemories serves the long-term query surface: non-retired items
// matching any of the tags, strongest first.
func (m *Mind) QueryMemories(ctx context.Context, tags []string, limit int) ([]memory.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ltm.Query(ctx, tags, limit)
}

// Recall serves semantic search over long-term memory. Returns ErrNoRecall
// when no recall index is wired.
func (m *Mind) Recall(ctx context.Context, query string, topK int) ([]memory.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.recall == nil {
		return nil, ErrNoRecall
	}

	hits, err := m.recall.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	items := make([]memory.Item, 0, len(hits))
	for _, hit := range hits {
		item, err := m.ltm.Resolve(ctx, hit.ID)
		if err != nil || item.Retired() {
			continue
		}
		items = append(items, item.Clone())
	}

	return items, nil
}
