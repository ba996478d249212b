// Package inmemory provides an in-process implementation of memory.Driver,
// used for tests and for agents that do not need durable recall across runs.
package inmemory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/inwardlabs/psyche/pkg/memory"
)

// record wraps a stored item with bookkeeping the ranking and decay rules need.
type record struct {
	item      memory.Item
	seq       int
	decayedAt time.Time
}

// Driver implements memory.Driver using in-process maps.
type Driver struct {
	params memory.Params

	mu sync.RWMutex

	// records maps item id to its stored record.
	records map[string]*record

	// aliases maps merged-away ids to the surviving id.
	aliases map[string]string

	// byTag and byDay are the tag and day-bucket indexes.
	byTag map[string]map[string]struct{}
	byDay map[string]map[string]struct{}

	nextSeq int
}

// NewDriver creates an in-memory long-term store with the given tunables.
func NewDriver(params memory.Params) *Driver {
	return &Driver{
		params:  params,
		records: make(map[string]*record),
		aliases: make(map[string]string),
		byTag:   make(map[string]map[string]struct{}),
		byDay:   make(map[string]map[string]struct{}),
	}
}

// Promote stores an independent snapshot of the item. Duplicate ids overwrite
// the stored item but keep its original insertion order.
func (d *Driver) Promote(_ context.Context, item memory.Item) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	seq := d.nextSeq
	if existing, ok := d.records[item.ID]; ok {
		seq = existing.seq
		d.unindexLocked(existing.item)
	} else {
		d.nextSeq++
	}

	rec := &record{
		item:      item.Clone(),
		seq:       seq,
		decayedAt: item.Timestamp,
	}
	d.records[item.ID] = rec
	d.indexLocked(rec.item)
	return nil
}

// Query returns non-retired items matching any of the given tags.
func (d *Driver) Query(_ context.Context, tags []string, limit int) ([]memory.Item, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	seen := make(map[string]struct{})
	var matched []*record
	for _, tag := range tags {
		for id := range d.byTag[tag] {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			rec := d.records[id]
			if rec.item.Retired() {
				continue
			}
			matched = append(matched, rec)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.item.Importance != b.item.Importance {
			return a.item.Importance > b.item.Importance
		}
		if !a.item.Timestamp.Equal(b.item.Timestamp) {
			return a.item.Timestamp.After(b.item.Timestamp)
		}
		return a.seq < b.seq
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]memory.Item, len(matched))
	for i, rec := range matched {
		out[i] = rec.item.Clone()
	}
	return out, nil
}

// DecayPass applies multiplicative importance decay and tags items falling
// below the retirement threshold.
func (d *Driver) DecayPass(_ context.Context, now time.Time) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	retired := 0
	for _, rec := range d.records {
		elapsed := now.Sub(rec.decayedAt)
		if elapsed <= 0 {
			continue
		}
		units := elapsed.Seconds() / d.params.DecayUnit.Seconds()
		rec.item.Importance *= math.Pow(d.params.DecayFactor, units)
		rec.decayedAt = now

		if rec.item.Importance < d.params.RetirementThreshold && !rec.item.Retired() {
			rec.item.Tags = append(rec.item.Tags, memory.TagRetired)
			d.indexTagLocked(memory.TagRetired, rec.item.ID)
			retired++
		}
	}
	return retired, nil
}

// Reconcile merges near-duplicate items per the deterministic plan from
// memory.PlanMerges: identical tag sets, text similarity at or above the merge
// threshold, highest importance survives.
func (d *Driver) Reconcile(_ context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	recs := make([]*record, 0, len(d.records))
	for _, rec := range d.records {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })

	items := make([]memory.Item, len(recs))
	for i, rec := range recs {
		items[i] = rec.item
	}

	merged := 0
	for _, plan := range memory.PlanMerges(items, d.params.MergeThreshold) {
		survivor := d.records[plan.SurvivorID]
		for _, id := range plan.MergedIDs {
			rec := d.records[id]
			survivor.item.Provenance = append(survivor.item.Provenance, id)
			survivor.item.Provenance = append(survivor.item.Provenance, rec.item.Provenance...)
			d.aliases[id] = survivor.item.ID
			d.unindexLocked(rec.item)
			delete(d.records, id)
			merged++
		}
	}
	return merged, nil
}

// Resolve returns the item for an id, following merge aliases.
func (d *Driver) Resolve(_ context.Context, id string) (memory.Item, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for {
		if rec, ok := d.records[id]; ok {
			return rec.item.Clone(), nil
		}
		next, ok := d.aliases[id]
		if !ok {
			return memory.Item{}, memory.NotFoundError{ID: id}
		}
		id = next
	}
}

// All returns every stored item in insertion order, retired included.
func (d *Driver) All(_ context.Context) ([]memory.Item, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	recs := make([]*record, 0, len(d.records))
	for _, rec := range d.records {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })

	out := make([]memory.Item, len(recs))
	for i, rec := range recs {
		out[i] = rec.item.Clone()
	}
	return out, nil
}

// Len returns the number of stored items.
func (d *Driver) Len(_ context.Context) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records), nil
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

func (d *Driver) indexLocked(item memory.Item) {
	for _, tag := range item.Tags {
		d.indexTagLocked(tag, item.ID)
	}
	day := memory.DayBucket(item.Timestamp)
	if d.byDay[day] == nil {
		d.byDay[day] = make(map[string]struct{})
	}
	d.byDay[day][item.ID] = struct{}{}
}

func (d *Driver) indexTagLocked(tag, id string) {
	if d.byTag[tag] == nil {
		d.byTag[tag] = make(map[string]struct{})
	}
	d.byTag[tag][id] = struct{}{}
}

func (d *Driver) unindexLocked(item memory.Item) {
	for _, tag := range item.Tags {
		delete(d.byTag[tag], item.ID)
	}
	delete(d.byDay[memory.DayBucket(item.Timestamp)], item.ID)
}

var _ memory.Driver = (*Driver)(nil)
