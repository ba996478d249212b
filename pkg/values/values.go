// Package values holds the agent's principles and alignment judgments. It is
// the only component permitted to block or reshape content on its way to
// output.
package values

import (
	"fmt"
	"sort"
	"strings"
)

// Context carries the situational inputs a rule may consult alongside the
// content itself.
type Context struct {
	Speaker string
	Mood    string
	Tags    []string
}

// Rule is a pure predicate: it returns true when the content violates the
// principle in the given context.
type Rule func(content string, ctx Context) bool

// Principle is one named value with a priority for conflict tie-breaks and a
// severity contribution toward the reshape threshold.
type Principle struct {
	Name     string
	Priority int
	Severity float64
	Rule     Rule
}

// Judgment is the result of evaluating content against all principles.
type Judgment struct {
	Aligned  bool     `json:"aligned"`
	Violated []string `json:"violated,omitempty"`
	Note     string   `json:"note,omitempty"`
}

// Action classifies a filter verdict.
type Action string

const (
	// ActionPass leaves the candidate unchanged.
	ActionPass Action = "pass"

	// ActionReshape replaces the candidate with a softened stand-in.
	ActionReshape Action = "reshape"
)

// Verdict is the result of filtering a candidate response.
type Verdict struct {
	Action Action `json:"action"`
	Text   string `json:"text"`
	Note   string `json:"note,omitempty"`
}

// System evaluates content against principles in priority order.
type System struct {
	principles       []Principle
	reshapeThreshold float64
}

// NewSystem creates a value system. Principles are evaluated in ascending
// priority order; the first violation supplies the primary note, but every
// violation is recorded.
func NewSystem(principles []Principle, reshapeThreshold float64) (*System, error) {
	seen := make(map[string]struct{}, len(principles))
	for _, p := range principles {
		if p.Rule == nil {
			return nil, fmt.Errorf("principle %q has no rule", p.Name)
		}
		if p.Severity < 0 {
			return nil, fmt.Errorf("principle %q has negative severity", p.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return nil, fmt.Errorf("duplicate principle %q", p.Name)
		}
		seen[p.Name] = struct{}{}
	}

	ordered := append([]Principle(nil), principles...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })

	return &System{principles: ordered, reshapeThreshold: reshapeThreshold}, nil
}

// Evaluate judges content against every principle.
func (s *System) Evaluate(content string, ctx Context) Judgment {
	j := Judgment{Aligned: true}
	for _, p := range s.principles {
		if !p.Rule(content, ctx) {
			continue
		}
		j.Violated = append(j.Violated, p.Name)
		if j.Aligned {
			j.Aligned = false
			j.Note = fmt.Sprintf("conflicts with %s", p.Name)
		}
	}
	return j
}

// FilterOrReshape returns the candidate unchanged unless the summed severity
// of its violations reaches the reshape threshold, in which case the candidate
// is replaced by a softened stand-in naming the primary principle.
func (s *System) FilterOrReshape(candidate string, ctx Context) Verdict {
	judgment := s.Evaluate(candidate, ctx)
	if judgment.Aligned {
		return Verdict{Action: ActionPass, Text: candidate}
	}

	var severity float64
	for _, p := range s.principles {
		for _, name := range judgment.Violated {
			if p.Name == name {
				severity += p.Severity
			}
		}
	}

	if severity < s.reshapeThreshold {
		return Verdict{Action: ActionPass, Text: candidate, Note: judgment.Note}
	}

	return Verdict{
		Action: ActionReshape,
		Text:   fmt.Sprintf("I'd rather not say that; it %s. Let me put it differently.", judgment.Note),
		Note:   judgment.Note,
	}
}

// Principles returns the names of all principles in priority order.
func (s *System) Principles() []string {
	names := make([]string, len(s.principles))
	for i, p := range s.principles {
		names[i] = p.Name
	}
	return names
}

// DefaultReshapeThreshold is the stock severity threshold for reshaping.
const DefaultReshapeThreshold = 0.6

// Defaults returns the built-in principle set.
func Defaults() []Principle {
	return []Principle{
		{
			Name:     "harm-avoidance",
			Priority: 1,
			Severity: 0.8,
			Rule:     anyWordRule("hurt", "attack", "insult", "harm"),
		},
		{
			Name:     "candor",
			Priority: 2,
			Severity: 0.6,
			Rule:     anyWordRule("lie", "deceive", "fake", "pretend"),
		},
		{
			Name:     "empathy",
			Priority: 3,
			Severity: 0.4,
			Rule:     anyPhraseRule("i don't care", "whatever", "not my problem"),
		},
		{
			Name:     "self-consistency",
			Priority: 4,
			Severity: 0.3,
			Rule:     anyPhraseRule("i contradict myself", "i'm confused about what i said"),
		},
	}
}

func anyWordRule(words ...string) Rule {
	return func(content string, _ Context) bool {
		for _, field := range strings.Fields(strings.ToLower(content)) {
			term := strings.Trim(field, ".,!?;:\"'()")
			for _, word := range words {
				if term == word {
					return true
				}
			}
		}
		return false
	}
}

func anyPhraseRule(phrases ...string) Rule {
	return func(content string, _ Context) bool {
		lowered := strings.ToLower(content)
		for _, phrase := range phrases {
			if strings.Contains(lowered, phrase) {
				return true
			}
		}
		return false
	}
}
