// Package eventstream publishes mind lifecycle events so external consumers
// can observe turns and dreams without polling the snapshot API.
package eventstream

import "time"

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnCompleted is emitted after a conversation turn commits.
	EventTypeTurnCompleted = "psyche.turn.completed"

	// EventTypeDreamIntegrated is emitted after a dream cycle commits.
	EventTypeDreamIntegrated = "psyche.dream.integrated"
)

// TurnCompletedEvent is a transport-neutral event payload for a committed
// turn.
type TurnCompletedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	Turn          TurnMeta  `json:"turn"`
}

// TurnMeta captures the state the turn left behind.
type TurnMeta struct {
	InteractionID string  `json:"interaction_id"`
	Mood          string  `json:"mood"`
	Energy        float64 `json:"energy"`
	Confidence    float64 `json:"confidence"`
	Outcome       string  `json:"outcome"`
	DominantDrive string  `json:"dominant_drive"`
	Promoted      int     `json:"promoted"`
	Reshaped      bool    `json:"reshaped"`
}

// DreamIntegratedEvent is a transport-neutral event payload for an integrated
// dream.
type DreamIntegratedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	Dream         DreamMeta `json:"dream"`
}

// DreamMeta captures what the dream sampled and produced.
type DreamMeta struct {
	Theme      string   `json:"theme"`
	Valence    float64  `json:"valence"`
	SampledIDs []string `json:"sampled_ids"`
	MemoryID   string   `json:"memory_id"`
}
