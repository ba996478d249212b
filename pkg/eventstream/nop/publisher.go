package nop

import (
	"context"

	"github.com/inwardlabs/psyche/pkg/eventstream"
)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

var _ eventstream.Publisher = (*Publisher)(nil)

// PublishTurn validates input and otherwise does nothing.
func (p *Publisher) PublishTurn(_ context.Context, event *eventstream.TurnCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}

	return nil
}

// PublishDream validates input and otherwise does nothing.
func (p *Publisher) PublishDream(_ context.Context, event *eventstream.DreamIntegratedEvent) error {
	if event == nil {
		return eventstream.ErrNilDreamEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
