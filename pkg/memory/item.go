package memory

import (
	"time"

	"github.com/google/uuid"
)

// Speaker identifies who produced a memory item.
type Speaker string

const (
	// SpeakerUser marks items captured from user input.
	SpeakerUser Speaker = "user"

	// SpeakerAgent marks items captured from the agent's own output.
	SpeakerAgent Speaker = "agent"
)

// TagRetired marks long-term items whose importance decayed below the
// retirement threshold. Retired items are retained for auditability and
// excluded from Query results; physical purging is an external housekeeping
// concern.
const TagRetired = "retired"

// Item is a single memory record. Items are created in short-term memory and
// may be promoted into long-term memory as independent snapshots; the two
// stores never share a mutable item.
type Item struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	Speaker    Speaker       `json:"speaker"`
	Text       string        `json:"text"`
	Tags       []string      `json:"tags,omitempty"`
	Importance float64       `json:"importance"`
	TTL        time.Duration `json:"ttl,omitempty"`

	// Provenance holds the ids of source items for synthesized or merged
	// records (dream entries, reconciled duplicates).
	Provenance []string `json:"provenance,omitempty"`
}

// NewItem creates an item with a fresh id and a UTC timestamp.
func NewItem(speaker Speaker, text string, tags []string, importance float64) Item {
	return Item{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Speaker:    speaker,
		Text:       text,
		Tags:       append([]string(nil), tags...),
		Importance: clamp01(importance),
	}
}

// Clone returns an independent copy with its own tag and provenance slices.
func (i Item) Clone() Item {
	out := i
	out.Tags = append([]string(nil), i.Tags...)
	out.Provenance = append([]string(nil), i.Provenance...)
	return out
}

// HasTag reports whether the item carries the given tag.
func (i Item) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Retired reports whether the item has been flagged retired by a decay pass.
func (i Item) Retired() bool {
	return i.HasTag(TagRetired)
}

// Expired reports whether the item's TTL has elapsed at the given time.
// Items without a TTL never expire.
func (i Item) Expired(now time.Time) bool {
	return i.TTL > 0 && now.Sub(i.Timestamp) > i.TTL
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
