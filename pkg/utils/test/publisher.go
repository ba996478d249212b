package testutils

import (
	"context"
	"fmt"

	"github.com/inwardlabs/psyche/pkg/eventstream"
)

// MockPublisher is a test eventstream publisher that records events.
type MockPublisher struct {
	TurnEvents  []*eventstream.TurnCompletedEvent
	DreamEvents []*eventstream.DreamIntegratedEvent

	// Fail causes publishes to return an error.
	Fail bool
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishTurn(_ context.Context, event *eventstream.TurnCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}
	if m.Fail {
		return fmt.Errorf("mock publish failure")
	}
	m.TurnEvents = append(m.TurnEvents, event)
	return nil
}

func (m *MockPublisher) PublishDream(_ context.Context, event *eventstream.DreamIntegratedEvent) error {
	if event == nil {
		return eventstream.ErrNilDreamEvent
	}
	if m.Fail {
		return fmt.Errorf("mock publish failure")
	}
	m.DreamEvents = append(m.DreamEvents, event)
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}
