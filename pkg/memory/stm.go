package memory

// DefaultShortTermCapacity is the default bound on the short-term buffer.
const DefaultShortTermCapacity = 10

// ShortTerm is a bounded FIFO of recent exchanges. Insertion order is recency
// order; the oldest item is evicted when the capacity is exceeded. Eviction is
// never an error: the caller receives the evicted item and decides whether it
// clears the promotion threshold for long-term memory.
//
// ShortTerm is not safe for concurrent use; all mutation is serialized through
// the engine.
type ShortTerm struct {
	capacity int
	items    []Item
}

// NewShortTerm creates a short-term buffer with the given capacity.
// Non-positive capacities fall back to DefaultShortTermCapacity.
func NewShortTerm(capacity int) *ShortTerm {
	if capacity <= 0 {
		capacity = DefaultShortTermCapacity
	}
	return &ShortTerm{
		capacity: capacity,
		items:    make([]Item, 0, capacity+1),
	}
}

// Append inserts an item at the tail. If the buffer would exceed its capacity
// the head is evicted and returned with ok=true. The size invariant
// len <= capacity holds after every call.
func (s *ShortTerm) Append(item Item) (evicted Item, ok bool) {
	s.items = append(s.items, item)
	if len(s.items) <= s.capacity {
		return Item{}, false
	}

	evicted = s.items[0]
	copy(s.items, s.items[1:])
	s.items = s.items[:len(s.items)-1]
	return evicted, true
}

// TagLast adds tags to the most recent item. No-op on an empty buffer.
func (s *ShortTerm) TagLast(tags ...string) {
	if len(s.items) == 0 {
		return
	}
	last := &s.items[len(s.items)-1]
	for _, tag := range tags {
		if !last.HasTag(tag) {
			last.Tags = append(last.Tags, tag)
		}
	}
}

// MarkLastImportance raises the most recent item's importance to at least the
// given value. No-op on an empty buffer.
func (s *ShortTerm) MarkLastImportance(importance float64) {
	if len(s.items) == 0 {
		return
	}
	last := &s.items[len(s.items)-1]
	if importance > last.Importance {
		last.Importance = clamp01(importance)
	}
}

// Snapshot returns an ordered copy of the buffer, most-recent-last. Mutating
// the returned items does not affect the buffer.
func (s *ShortTerm) Snapshot() []Item {
	out := make([]Item, len(s.items))
	for i, item := range s.items {
		out[i] = item.Clone()
	}
	return out
}

// Len returns the number of buffered items.
func (s *ShortTerm) Len() int {
	return len(s.items)
}

// Capacity returns the configured bound.
func (s *ShortTerm) Capacity() int {
	return s.capacity
}
