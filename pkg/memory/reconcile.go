package memory

import "sort"

// Merge describes one reconciliation step: the ids merged away and the item
// that survives them.
type Merge struct {
	SurvivorID string
	MergedIDs  []string
}

// PlanMerges computes the deterministic merge plan for a set of items given in
// insertion order. Items group by identical tag set; within a group, items
// whose text similarity to the group's strongest item meets the threshold
// collapse into it. Retired items never participate. The plan is stable: the
// same input always yields the same merges, and applying a plan leaves no
// further merges to find.
func PlanMerges(items []Item, threshold float64) []Merge {
	type candidate struct {
		item Item
		pos  int
	}

	groups := make(map[string][]candidate)
	for pos, item := range items {
		if item.Retired() {
			continue
		}
		key := TagSetKey(item.Tags)
		groups[key] = append(groups[key], candidate{item: item, pos: pos})
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var plan []Merge
	for _, key := range keys {
		group := groups[key]
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			if group[i].item.Importance != group[j].item.Importance {
				return group[i].item.Importance > group[j].item.Importance
			}
			return group[i].pos < group[j].pos
		})

		survivor := group[0].item
		merge := Merge{SurvivorID: survivor.ID}
		for _, cand := range group[1:] {
			if TextSimilarity(survivor.Text, cand.item.Text) < threshold {
				continue
			}
			merge.MergedIDs = append(merge.MergedIDs, cand.item.ID)
		}
		if len(merge.MergedIDs) > 0 {
			plan = append(plan, merge)
		}
	}
	return plan
}
