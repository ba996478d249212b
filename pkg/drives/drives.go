// Package drives models the agent's motivational scalars. Each drive rises and
// decays toward context-determined targets and can raise an intent flag once
// it crosses its threshold; the engine consumes intents to trigger autonomous
// behavior such as dreaming.
package drives

import "fmt"

// Canonical drive names. The default priority order breaks dominance ties in
// this order.
const (
	Curiosity  = "curiosity"
	Boredom    = "boredom"
	Connection = "connection"
	Safety     = "safety"
)

// Intent names raised by drives crossing their thresholds.
const (
	IntentDream    = "dream"
	IntentExplore  = "explore"
	IntentEngage   = "engage"
	IntentWithdraw = "withdraw"
)

// Drive is one motivational scalar. Level stays within [0,1]; RiseRate and
// DecayRate are the per-tick approach rates toward a rising or falling target.
type Drive struct {
	Name      string  `json:"name"`
	Level     float64 `json:"level"`
	RiseRate  float64 `json:"rise_rate"`
	DecayRate float64 `json:"decay_rate"`
}

// Signals are the per-tick context inputs that steer drive targets.
type Signals struct {
	// NovelTags is the number of previously unseen tags in the turn.
	NovelTags int

	// Sentiment is the analyzed input sentiment in [-1,1]. Zero on idle
	// ticks.
	Sentiment float64

	// Idle marks a tick with no user interaction.
	Idle bool

	// DreamCompleted marks the tick immediately after an integrated dream
	// cycle; it pulls boredom back down.
	DreamCompleted bool
}

// Params holds the drive tunables.
type Params struct {
	// IntentThreshold is the level at or above which a drive raises its
	// intent flag.
	IntentThreshold float64

	// Priority is the dominance tie-break order, strongest first.
	Priority []string
}

// DefaultParams returns the stock drive tunables.
func DefaultParams() Params {
	return Params{
		IntentThreshold: 0.8,
		Priority:        []string{Curiosity, Boredom, Connection, Safety},
	}
}

// Set is the keyed collection of drives. Names are unique. Not safe for
// concurrent use; mutation is serialized through the engine.
type Set struct {
	params Params
	byName map[string]*Drive
	order  []string
}

// NewSet creates the default drive set: curious by default, mildly social,
// with boredom and safety starting low.
func NewSet(params Params) *Set {
	s := &Set{
		params: params,
		byName: make(map[string]*Drive),
	}
	s.add(&Drive{Name: Curiosity, Level: 0.5, RiseRate: 0.15, DecayRate: 0.05})
	s.add(&Drive{Name: Boredom, Level: 0.3, RiseRate: 0.10, DecayRate: 0.25})
	s.add(&Drive{Name: Connection, Level: 0.4, RiseRate: 0.10, DecayRate: 0.05})
	s.add(&Drive{Name: Safety, Level: 0.2, RiseRate: 0.20, DecayRate: 0.10})
	return s
}

func (s *Set) add(d *Drive) {
	s.byName[d.Name] = d
	s.order = append(s.order, d.Name)
}

// Validate rejects misconfigured drives. Called once at configuration time so
// the per-turn path stays invariant-safe.
func (s *Set) Validate() error {
	for _, name := range s.order {
		d := s.byName[name]
		if d.Level < 0 || d.Level > 1 {
			return fmt.Errorf("drive %s: level %f outside [0,1]", d.Name, d.Level)
		}
		if d.RiseRate < 0 || d.RiseRate > 1 {
			return fmt.Errorf("drive %s: rise rate %f outside [0,1]", d.Name, d.RiseRate)
		}
		if d.DecayRate < 0 || d.DecayRate > 1 {
			return fmt.Errorf("drive %s: decay rate %f outside [0,1]", d.Name, d.DecayRate)
		}
	}
	return nil
}

// Tick moves every drive's level toward its context target. Levels approach
// the target geometrically at the rise rate when climbing and the decay rate
// when falling, so they stay within [0,1] for any valid configuration.
func (s *Set) Tick(sig Signals) {
	for _, name := range s.order {
		d := s.byName[name]
		target := s.target(name, sig)

		rate := d.DecayRate
		if target > d.Level {
			rate = d.RiseRate
		}
		d.Level = clamp01(d.Level + rate*(target-d.Level))
	}
}

// target encodes the fixed context rules: curiosity rises with novelty,
// boredom grows through uneventful idleness and collapses after a dream,
// connection follows warm sentiment, safety follows hostile sentiment.
func (s *Set) target(name string, sig Signals) float64 {
	switch name {
	case Curiosity:
		if sig.NovelTags > 0 {
			return 1
		}
		if sig.DreamCompleted {
			return 0
		}
		return 0.3
	case Boredom:
		if sig.DreamCompleted {
			return 0
		}
		if sig.Idle && sig.NovelTags == 0 {
			return 1
		}
		return 0
	case Connection:
		if sig.Sentiment > 0.1 {
			return 1
		}
		if sig.Sentiment < -0.1 {
			return 0
		}
		return 0.4
	case Safety:
		if sig.Sentiment < -0.3 {
			return 1
		}
		return 0.1
	}
	return 0
}

// Dominant returns the drive with the highest level. Ties are broken by the
// configured priority order.
func (s *Set) Dominant() Drive {
	var best *Drive
	for _, name := range s.params.Priority {
		d, ok := s.byName[name]
		if !ok {
			continue
		}
		if best == nil || d.Level > best.Level {
			best = d
		}
	}
	if best == nil {
		return Drive{}
	}
	return *best
}

// Intents returns the intent flags for every drive at or above the intent
// threshold, in priority order.
func (s *Set) Intents() []string {
	var intents []string
	for _, name := range s.params.Priority {
		d, ok := s.byName[name]
		if !ok || d.Level < s.params.IntentThreshold {
			continue
		}
		switch name {
		case Boredom:
			intents = append(intents, IntentDream)
		case Curiosity:
			intents = append(intents, IntentExplore)
		case Connection:
			intents = append(intents, IntentEngage)
		case Safety:
			intents = append(intents, IntentWithdraw)
		}
	}
	return intents
}

// Snapshot returns copies of all drives in their fixed order.
func (s *Set) Snapshot() []Drive {
	out := make([]Drive, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, *s.byName[name])
	}
	return out
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
