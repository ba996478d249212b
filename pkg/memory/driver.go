// Package memory provides the layered memory stores for the psyche engine.
//
// Short-term memory is a bounded in-process FIFO owned by the engine. Long-term
// memory is a pluggable [Driver]: items evicted from the short-term buffer that
// clear the promotion threshold are promoted into it as independent snapshots,
// indexed by tag and by day bucket, decayed on idle passes, and reconciled so
// near-duplicate records collapse deterministically into one canonical item.
//
// Drivers are pluggable via configuration:
//
//	[memory]
//	provider = "inmemory"   # or "sqlite"
package memory

import (
	"context"
	"time"
)

// Driver handles durable storage and retrieval of long-term memory items.
type Driver interface {
	// Promote stores an independent snapshot of the item and indexes it by
	// tag and by the day bucket of its timestamp. Idempotent on duplicate
	// id: the stored item is overwritten, its insertion order is kept.
	Promote(ctx context.Context, item Item) error

	// Query returns non-retired items matching ANY of the given tags,
	// ranked by importance desc, then recency desc, ties broken by
	// insertion order. An empty tag set matches nothing.
	Query(ctx context.Context, tags []string, limit int) ([]Item, error)

	// DecayPass multiplies each item's importance by
	// decay_factor^(elapsed/unit) since its last decay. Items falling below
	// the retirement threshold are tagged retired but retained. Returns the
	// number of items newly retired.
	DecayPass(ctx context.Context, now time.Time) (int, error)

	// Reconcile merges near-duplicate items: same tag set and text
	// similarity at or above the merge threshold. The highest-importance
	// item survives, its provenance records the merged ids, and merged ids
	// stay resolvable to the survivor. Returns the number of items merged
	// away. Running Reconcile twice yields the same state as running it
	// once.
	Reconcile(ctx context.Context) (int, error)

	// Resolve returns the item for the given id, following merge aliases to
	// the surviving record. Returns NotFoundError for unknown ids.
	Resolve(ctx context.Context, id string) (Item, error)

	// All returns every stored item, retired included, ordered by insertion.
	All(ctx context.Context) ([]Item, error)

	// Len returns the number of stored items, retired included.
	Len(ctx context.Context) (int, error)

	// Close releases driver resources.
	Close() error
}

// Params holds the long-term memory tunables. The spec's source material fixes
// none of these numerically, so they are explicit configuration with the
// defaults below rather than inferred values.
type Params struct {
	// DecayFactor is the multiplicative importance decay per DecayUnit.
	DecayFactor float64

	// DecayUnit is the elapsed-time unit for one application of DecayFactor.
	DecayUnit time.Duration

	// RetirementThreshold is the importance below which a decay pass tags
	// an item retired.
	RetirementThreshold float64

	// MergeThreshold is the minimum text similarity for Reconcile to merge
	// two items sharing a tag set.
	MergeThreshold float64
}

// DefaultParams returns the stock long-term memory tunables.
func DefaultParams() Params {
	return Params{
		DecayFactor:         0.98,
		DecayUnit:           time.Hour,
		RetirementThreshold: 0.05,
		MergeThreshold:      0.85,
	}
}

// DayBucket returns the day index key used for time-bucketed lookups.
func DayBucket(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
