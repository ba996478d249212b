package eventstream

import "context"

// Publisher publishes mind events to an event stream backend. Publishing is
// best effort: the orchestrator logs failures but never fails a turn over
// them.
type Publisher interface {
	PublishTurn(ctx context.Context, event *TurnCompletedEvent) error
	PublishDream(ctx context.Context, event *DreamIntegratedEvent) error
	Close() error
}
