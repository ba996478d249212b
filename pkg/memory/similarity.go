package memory

import (
	"math"
	"sort"
	"strings"
)

// TextSimilarity returns the cosine similarity of the term-frequency vectors
// of two texts, in [0,1]. Tokenization is lowercase whitespace splitting with
// surrounding punctuation stripped, which keeps reconciliation deterministic
// and dependency-free.
func TextSimilarity(a, b string) float64 {
	ta := termFreq(a)
	tb := termFreq(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var dot, na, nb float64
	for term, fa := range ta {
		na += fa * fa
		if fb, ok := tb[term]; ok {
			dot += fa * fb
		}
	}
	for _, fb := range tb {
		nb += fb * fb
	}
	if dot == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func termFreq(text string) map[string]float64 {
	freq := make(map[string]float64)
	for _, field := range strings.Fields(strings.ToLower(text)) {
		term := strings.Trim(field, ".,!?;:\"'()[]")
		if term == "" {
			continue
		}
		freq[term]++
	}
	return freq
}

// SameTagSet reports whether two tag slices contain the same set of tags,
// ignoring order, duplicates, and the retired marker.
func SameTagSet(a, b []string) bool {
	return TagSetKey(a) == TagSetKey(b)
}

// TagSetKey returns a canonical string key for a tag set, ignoring order,
// duplicates, and the retired marker. Drivers use it to group reconciliation
// candidates.
func TagSetKey(tags []string) string {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t == TagRetired {
			continue
		}
		set[t] = struct{}{}
	}
	uniq := make([]string, 0, len(set))
	for t := range set {
		uniq = append(uniq, t)
	}
	sort.Strings(uniq)
	return strings.Join(uniq, "\x00")
}
