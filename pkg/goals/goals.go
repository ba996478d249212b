// Package goals tracks the agent's active goals and the nudges they feed back
// into conversation.
package goals

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status of a goal's lifecycle.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Goal is one tracked objective. Progress lives in [0,1]; a goal completes
// when progress reaches 1.
type Goal struct {
	ID       string    `json:"id"`
	Text     string    `json:"text"`
	Status   Status    `json:"status"`
	Progress float64   `json:"progress"`
	Added    time.Time `json:"added"`
	Updated  time.Time `json:"updated"`
}

// Tracker holds goals in insertion order. Not safe for concurrent use;
// mutation is serialized through the orchestrator.
type Tracker struct {
	goals []*Goal
	now   func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{now: func() time.Time { return time.Now().UTC() }}
}

// Add registers a new active goal and returns it. Empty or duplicate text is
// rejected by returning the existing goal unchanged.
func (t *Tracker) Add(text string) (Goal, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Goal{}, false
	}
	for _, g := range t.goals {
		if g.Status == StatusActive && strings.EqualFold(g.Text, text) {
			return *g, false
		}
	}
	now := t.now()
	g := &Goal{
		ID:      uuid.NewString(),
		Text:    text,
		Status:  StatusActive,
		Added:   now,
		Updated: now,
	}
	t.goals = append(t.goals, g)
	return *g, true
}

// MarkProgress advances a goal's progress, completing it at 1. Unknown ids
// and non-active goals are ignored.
func (t *Tracker) MarkProgress(id string, delta float64) bool {
	for _, g := range t.goals {
		if g.ID != id || g.Status != StatusActive {
			continue
		}
		g.Progress += delta
		if g.Progress < 0 {
			g.Progress = 0
		}
		if g.Progress >= 1 {
			g.Progress = 1
			g.Status = StatusCompleted
		}
		g.Updated = t.now()
		return true
	}
	return false
}

// Abandon retires a goal without completing it.
func (t *Tracker) Abandon(id string) bool {
	for _, g := range t.goals {
		if g.ID == id && g.Status == StatusActive {
			g.Status = StatusAbandoned
			g.Updated = t.now()
			return true
		}
	}
	return false
}

// Active returns copies of the active goals in insertion order.
func (t *Tracker) Active() []Goal {
	var out []Goal
	for _, g := range t.goals {
		if g.Status == StatusActive {
			out = append(out, *g)
		}
	}
	return out
}

// All returns copies of every goal in insertion order.
func (t *Tracker) All() []Goal {
	out := make([]Goal, 0, len(t.goals))
	for _, g := range t.goals {
		out = append(out, *g)
	}
	return out
}

// Summary renders the active goals as a single line for context payloads.
func (t *Tracker) Summary() string {
	active := t.Active()
	if len(active) == 0 {
		return "no active goals"
	}
	texts := make([]string, len(active))
	for i, g := range active {
		texts[i] = g.Text
	}
	return strings.Join(texts, "; ")
}

// TagHints extracts lowercase keywords from active goal text, used to bias
// memory queries toward what the agent is working on. Short stop words are
// dropped and hints are deduplicated and sorted.
func (t *Tracker) TagHints() []string {
	seen := make(map[string]struct{})
	for _, g := range t.Active() {
		for _, field := range strings.Fields(strings.ToLower(g.Text)) {
			word := strings.Trim(field, ".,!?;:\"'()")
			if len(word) < 4 || stopWords[word] {
				continue
			}
			seen[word] = struct{}{}
		}
	}
	hints := make([]string, 0, len(seen))
	for w := range seen {
		hints = append(hints, w)
	}
	sort.Strings(hints)
	return hints
}

var stopWords = map[string]bool{
	"about": true,
	"into":  true,
	"more":  true,
	"some":  true,
	"that":  true,
	"them":  true,
	"then":  true,
	"this":  true,
	"what":  true,
	"with":  true,
	"your":  true,
}
