// Package experience keeps the append-only log of interaction outcomes.
//
// Each completed turn produces exactly one immutable Record. The trait engine
// and self-state consume records and recent outcome trends to decide
// directionality; a rising friction frequency is the signal behind
// "I've noticed that doesn't work anymore".
package experience

import "time"

// Outcome classifies how an interaction went.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailure  Outcome = "failure"
	OutcomeFriction Outcome = "friction"
	OutcomeJoy      Outcome = "joy"
	OutcomeNeutral  Outcome = "neutral"

	// OutcomeDream marks synthetic records emitted by an integrated dream
	// cycle rather than a user turn.
	OutcomeDream Outcome = "dream"
)

// Record is one immutable outcome entry. Records are never mutated after
// creation.
type Record struct {
	InteractionID string    `json:"interaction_id"`
	Outcome       Outcome   `json:"outcome"`
	Evidence      string    `json:"evidence,omitempty"`
	At            time.Time `json:"at"`
}

// NewRecord creates a record stamped with the current UTC time.
func NewRecord(interactionID string, outcome Outcome, evidence string) Record {
	return Record{
		InteractionID: interactionID,
		Outcome:       outcome,
		Evidence:      evidence,
		At:            time.Now().UTC(),
	}
}

// Log is the append-only outcome log. Not safe for concurrent use; mutation is
// serialized through the engine.
type Log struct {
	records []Record
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append adds a record to the log.
func (l *Log) Append(rec Record) {
	l.records = append(l.records, rec)
}

// Len returns the number of recorded outcomes.
func (l *Log) Len() int {
	return len(l.records)
}

// Recent returns copies of the last n records, oldest first.
func (l *Log) Recent(n int) []Record {
	if n <= 0 || n > len(l.records) {
		n = len(l.records)
	}
	out := make([]Record, n)
	copy(out, l.records[len(l.records)-n:])
	return out
}

// RecentTrend returns the outcome-kind frequency over the last window records.
// Frequencies sum to 1 for a non-empty window.
func (l *Log) RecentTrend(window int) map[Outcome]float64 {
	recent := l.Recent(window)
	trend := make(map[Outcome]float64, len(recent))
	if len(recent) == 0 {
		return trend
	}
	for _, rec := range recent {
		trend[rec.Outcome] += 1
	}
	for outcome := range trend {
		trend[outcome] /= float64(len(recent))
	}
	return trend
}
