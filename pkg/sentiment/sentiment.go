// Package sentiment scores user input and extracts topic tags.
//
// The stock analyzer is a small valence lexicon. It is deterministic and
// dependency-free on purpose: sentiment feeds mood and drive updates every
// turn, so it has to be cheap and replayable.
package sentiment

import (
	"sort"
	"strings"
)

// Result is a scored reading of one utterance. Score lives in [-1, 1].
type Result struct {
	Score float64  `json:"score"`
	Tags  []string `json:"tags,omitempty"`
}

// Analyzer scores text. Implementations must be pure.
type Analyzer interface {
	Analyze(text string) Result
}

// Lexicon scores text by averaging word valences and extracts content words
// as tags.
type Lexicon struct {
	valences map[string]float64
}

// NewLexicon creates an analyzer with the stock valence table.
func NewLexicon() *Lexicon {
	return &Lexicon{valences: defaultValences()}
}

var _ Analyzer = (*Lexicon)(nil)

// Analyze scores text in [-1, 1] and returns up to five content-word tags.
func (l *Lexicon) Analyze(text string) Result {
	var (
		sum  float64
		hits int
		tags []string
		seen = make(map[string]struct{})
	)
	for _, field := range strings.Fields(strings.ToLower(text)) {
		word := strings.Trim(field, ".,!?;:\"'()")
		if word == "" {
			continue
		}
		if v, ok := l.valences[word]; ok {
			sum += v
			hits++
		}
		if len(word) >= 4 && !tagStop[word] {
			if _, dup := seen[word]; !dup {
				seen[word] = struct{}{}
				tags = append(tags, word)
			}
		}
	}

	var score float64
	if hits > 0 {
		score = sum / float64(hits)
	}
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}

	sort.Strings(tags)
	if len(tags) > 5 {
		tags = tags[:5]
	}
	return Result{Score: score, Tags: tags}
}

func defaultValences() map[string]float64 {
	return map[string]float64{
		"love":      1.0,
		"wonderful": 1.0,
		"amazing":   0.9,
		"great":     0.8,
		"thanks":    0.8,
		"thank":     0.8,
		"happy":     0.7,
		"good":      0.6,
		"glad":      0.6,
		"nice":      0.5,
		"fun":       0.5,
		"cool":      0.4,
		"okay":      0.1,
		"fine":      0.1,
		"meh":       -0.2,
		"boring":    -0.4,
		"bad":       -0.5,
		"annoying":  -0.5,
		"sad":       -0.6,
		"angry":     -0.7,
		"awful":     -0.8,
		"terrible":  -0.9,
		"hate":      -1.0,
	}
}

var tagStop = map[string]bool{
	"about":  true,
	"been":   true,
	"could":  true,
	"does":   true,
	"have":   true,
	"just":   true,
	"know":   true,
	"like":   true,
	"more":   true,
	"really": true,
	"some":   true,
	"tell":   true,
	"that":   true,
	"them":   true,
	"then":   true,
	"they":   true,
	"this":   true,
	"very":   true,
	"want":   true,
	"what":   true,
	"when":   true,
	"will":   true,
	"with":   true,
	"would":  true,
	"your":   true,
}
