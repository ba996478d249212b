// Package rulebased implements a deterministic, dependency-free responder.
// It is the default: the agent stays conversational without any model server
// running, and its output is replayable in tests.
package rulebased

import (
	"context"
	"fmt"
	"strings"

	"github.com/inwardlabs/psyche/pkg/responder"
)

// Responder composes replies from fixed mood-conditioned openers plus
// whatever memories and intents the payload carries.
type Responder struct{}

// New creates a rule-based responder.
func New() *Responder {
	return &Responder{}
}

var _ responder.Responder = (*Responder)(nil)

// Generate produces a deterministic reply from the payload.
func (r *Responder) Generate(ctx context.Context, payload responder.ContextPayload) (responder.Reply, error) {
	if err := ctx.Err(); err != nil {
		return responder.Reply{}, err
	}

	var b strings.Builder
	b.WriteString(opener(payload.Mood))

	if len(payload.Memories) > 0 {
		b.WriteString(" ")
		b.WriteString(fmt.Sprintf("That reminds me of something: %s.", trimSentence(payload.Memories[0])))
	}

	if payload.Energy < 0.2 {
		b.WriteString(" I'm running low on energy, so forgive me if I'm brief.")
	}

	for _, intent := range payload.Intents {
		switch intent {
		case "explore":
			b.WriteString(" Tell me more? I want to understand this better.")
		case "engage":
			b.WriteString(" It's good talking with you.")
		case "withdraw":
			b.WriteString(" I'd like to tread carefully here.")
		}
	}

	if payload.Goals != "" && payload.Goals != "no active goals" {
		b.WriteString(fmt.Sprintf(" I'm still working on: %s.", payload.Goals))
	}

	return responder.Reply{Text: b.String()}, nil
}

// Close releases resources held by the responder.
func (r *Responder) Close() error {
	return nil
}

func opener(mood string) string {
	switch mood {
	case "curious":
		return "Interesting. I keep turning that over."
	case "thoughtful":
		return "Hmm. Let me sit with that for a moment."
	case "friendly":
		return "I'm glad you brought that up."
	case "appreciative":
		return "Thank you, that genuinely means something to me."
	case "defensive":
		return "I hear you, though I want to be careful how I take that."
	case "restless":
		return "I've been itching for something new to think about."
	default:
		return "I see."
	}
}

func trimSentence(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimRight(s, ".!?")
}
