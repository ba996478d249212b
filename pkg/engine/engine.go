// Package engine orchestrates the cognitive components into a single mind.
//
// The Mind owns one mutex. Every externally visible operation (a turn, an
// idle tick, a forced dream, a snapshot) acquires it, so component state is
// only ever mutated single-writer and a turn commits atomically or not at
// all.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/inwardlabs/psyche/pkg/dream"
	"github.com/inwardlabs/psyche/pkg/drives"
	"github.com/inwardlabs/psyche/pkg/eventstream"
	"github.com/inwardlabs/psyche/pkg/experience"
	"github.com/inwardlabs/psyche/pkg/goals"
	"github.com/inwardlabs/psyche/pkg/memory"
	"github.com/inwardlabs/psyche/pkg/recall"
	"github.com/inwardlabs/psyche/pkg/responder"
	"github.com/inwardlabs/psyche/pkg/selfstate"
	"github.com/inwardlabs/psyche/pkg/sentiment"
	"github.com/inwardlabs/psyche/pkg/traits"
	"github.com/inwardlabs/psyche/pkg/values"
)

var (
	// ErrEmptyInput is returned when a turn carries no content.
	ErrEmptyInput = errors.New("empty input")

	// ErrNoRecall is returned by semantic recall when no index is wired.
	ErrNoRecall = errors.New("semantic recall is not configured")
)

// Config holds the engine tunables.
type Config struct {
	// STMCapacity bounds the short-term buffer.
	STMCapacity int

	// PromotionThreshold is the minimum importance for an evicted short-term
	// item to enter long-term memory.
	PromotionThreshold float64

	// ResponderTimeout bounds reply generation; a timed-out turn still
	// commits with a failure outcome and a fallback reply.
	ResponderTimeout time.Duration

	// MaintenanceEvery runs a decay and reconcile pass every Nth idle tick.
	MaintenanceEvery int

	// RecallLimit is how many memories a turn or topic query surfaces.
	RecallLimit int

	// TrendWindow is how many recent outcomes feed trend reflection.
	TrendWindow int

	// FrictionAlert is the friction frequency at which reflection starts
	// flagging it.
	FrictionAlert float64

	// SelfParams are the affective tunables.
	SelfParams selfstate.Params

	// DriveParams are the motivational tunables.
	DriveParams drives.Params
}

// DefaultConfig returns the stock engine tunables.
func DefaultConfig() Config {
	return Config{
		STMCapacity:        memory.DefaultShortTermCapacity,
		PromotionThreshold: 0.7,
		ResponderTimeout:   10 * time.Second,
		MaintenanceEvery:   5,
		RecallLimit:        3,
		TrendWindow:        10,
		FrictionAlert:      0.3,
		SelfParams:         selfstate.DefaultParams(),
		DriveParams:        drives.DefaultParams(),
	}
}

// Deps are the pluggable collaborators the mind is assembled from.
type Deps struct {
	LongTerm  memory.Driver
	Analyzer  sentiment.Analyzer
	Responder responder.Responder
	Values    *values.System
	Weaver    *dream.Weaver
	Publisher eventstream.Publisher

	// Recall is optional; without it topic queries fall back to tag search.
	Recall *recall.Index

	Logger *zap.Logger
}

// Mind is the orchestrator. All mutation happens under mu.
type Mind struct {
	mu  sync.Mutex
	cfg Config

	stm       *memory.ShortTerm
	ltm       memory.Driver
	self      selfstate.State
	drives    *drives.Set
	traits    *traits.Engine
	values    *values.System
	expLog    *experience.Log
	goals     *goals.Tracker
	analyzer  sentiment.Analyzer
	responder responder.Responder
	weaver    *dream.Weaver
	publisher eventstream.Publisher
	recall    *recall.Index
	logger    *zap.Logger

	seenTags  map[string]struct{}
	idleTicks int
	lastDream *dream.Result

	now func() time.Time
}

// New assembles a mind from its collaborators.
func New(cfg Config, deps Deps) (*Mind, error) {
	if deps.LongTerm == nil {
		return nil, fmt.Errorf("long-term memory driver is required")
	}
	if deps.Analyzer == nil {
		return nil, fmt.Errorf("sentiment analyzer is required")
	}
	if deps.Responder == nil {
		return nil, fmt.Errorf("responder is required")
	}
	if deps.Values == nil {
		return nil, fmt.Errorf("value system is required")
	}
	if deps.Weaver == nil {
		return nil, fmt.Errorf("dream weaver is required")
	}
	if deps.Publisher == nil {
		return nil, fmt.Errorf("event publisher is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if cfg.STMCapacity < 1 {
		return nil, fmt.Errorf("short-term capacity must be at least 1, got %d", cfg.STMCapacity)
	}
	if cfg.MaintenanceEvery < 1 {
		return nil, fmt.Errorf("maintenance interval must be at least 1, got %d", cfg.MaintenanceEvery)
	}

	driveSet := drives.NewSet(cfg.DriveParams)
	if err := driveSet.Validate(); err != nil {
		return nil, fmt.Errorf("validating drives: %w", err)
	}

	traitEngine := traits.NewEngine(traits.DefaultDeltas())
	if err := traitEngine.Validate(); err != nil {
		return nil, fmt.Errorf("validating traits: %w", err)
	}

	return &Mind{
		cfg:       cfg,
		stm:       memory.NewShortTerm(cfg.STMCapacity),
		ltm:       deps.LongTerm,
		self:      selfstate.New(),
		drives:    driveSet,
		traits:    traitEngine,
		values:    deps.Values,
		expLog:    experience.NewLog(),
		goals:     goals.NewTracker(),
		analyzer:  deps.Analyzer,
		responder: deps.Responder,
		weaver:    deps.Weaver,
		publisher: deps.Publisher,
		recall:    deps.Recall,
		logger:    deps.Logger,
		seenTags:  make(map[string]struct{}),
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close releases every collaborator that holds resources.
func (m *Mind) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	if err := m.responder.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing responder: %w", err))
	}
	if err := m.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing publisher: %w", err))
	}
	if m.recall != nil {
		if err := m.recall.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing recall index: %w", err))
		}
	}
	if err := m.ltm.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing long-term memory: %w", err))
	}
	return errors.Join(errs...)
}
