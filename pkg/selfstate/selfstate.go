// Package selfstate models the agent's affective state: mood, energy, and
// confidence. All transitions are pure functions of (state, inputs) so the
// state is unit-testable and only the engine ever applies them.
package selfstate

import "github.com/inwardlabs/psyche/pkg/experience"

// Mood is the agent's current affective coloring.
type Mood string

const (
	MoodNeutral      Mood = "neutral"
	MoodCurious      Mood = "curious"
	MoodThoughtful   Mood = "thoughtful"
	MoodFriendly     Mood = "friendly"
	MoodAppreciative Mood = "appreciative"
	MoodDefensive    Mood = "defensive"
	MoodRestless     Mood = "restless"
)

// moodLadder orders moods from most guarded to most open. Dream valence shifts
// walk this ladder one step at a time.
var moodLadder = []Mood{
	MoodDefensive,
	MoodRestless,
	MoodThoughtful,
	MoodNeutral,
	MoodCurious,
	MoodFriendly,
	MoodAppreciative,
}

// State is the affective snapshot. Energy and Confidence stay within [0,1].
type State struct {
	Mood       Mood    `json:"mood"`
	Energy     float64 `json:"energy"`
	Confidence float64 `json:"confidence"`
}

// New returns the initial affective state.
func New() State {
	return State{
		Mood:       MoodNeutral,
		Energy:     1.0,
		Confidence: 0.7,
	}
}

// Params holds the self-state tunables.
type Params struct {
	// TurnEnergyCost is subtracted from energy on every processed turn.
	TurnEnergyCost float64

	// IdleEnergyRecovery is added to energy on every idle tick.
	IdleEnergyRecovery float64

	// SuccessConfidenceGain is added to confidence on success and joy
	// outcomes.
	SuccessConfidenceGain float64

	// FailureConfidencePenalty is subtracted from confidence on failure
	// outcomes.
	FailureConfidencePenalty float64

	// ViolationConfidencePenalty is subtracted from confidence when input
	// conflicts with a core value.
	ViolationConfidencePenalty float64
}

// DefaultParams returns the stock self-state tunables.
func DefaultParams() Params {
	return Params{
		TurnEnergyCost:             0.02,
		IdleEnergyRecovery:         0.05,
		SuccessConfidenceGain:      0.05,
		FailureConfidencePenalty:   0.08,
		ViolationConfidencePenalty: 0.05,
	}
}

// Next returns the state after one turn: the mood blends from the previous
// mood, the input sentiment, and the dominant drive, and the per-turn energy
// cost is applied. Deterministic for identical inputs.
func Next(s State, sentiment float64, dominantDrive string, p Params) State {
	s.Mood = blendMood(s.Mood, sentiment, dominantDrive)
	s.Energy = clamp01(s.Energy - p.TurnEnergyCost)
	return s
}

// Recover returns the state after one idle tick of energy recovery.
func Recover(s State, p Params) State {
	s.Energy = clamp01(s.Energy + p.IdleEnergyRecovery)
	return s
}

// ApplyOutcome adjusts confidence for a classified outcome.
func ApplyOutcome(s State, outcome experience.Outcome, p Params) State {
	switch outcome {
	case experience.OutcomeSuccess, experience.OutcomeJoy:
		s.Confidence = clamp01(s.Confidence + p.SuccessConfidenceGain)
	case experience.OutcomeFailure:
		s.Confidence = clamp01(s.Confidence - p.FailureConfidencePenalty)
	}
	return s
}

// ApplyViolation lowers confidence after input conflicted with a core value.
func ApplyViolation(s State, p Params) State {
	s.Confidence = clamp01(s.Confidence - p.ViolationConfidencePenalty)
	return s
}

// ShiftToward moves the mood one ladder step toward the given valence: up for
// positive, down for negative, unchanged for zero. Dream integration uses this
// to let a dream's dominant valence color the waking mood.
func ShiftToward(s State, valence float64) State {
	idx := ladderIndex(s.Mood)
	switch {
	case valence > 0 && idx < len(moodLadder)-1:
		s.Mood = moodLadder[idx+1]
	case valence < 0 && idx > 0:
		s.Mood = moodLadder[idx-1]
	}
	return s
}

// blendMood is the fixed lookup/blend rule. Strong positive sentiment always
// lands on appreciative regardless of the previous mood; mild sentiment is
// colored by the dominant drive; neutral input lets the dominant drive lead.
func blendMood(old Mood, sentiment float64, dominantDrive string) Mood {
	switch {
	case sentiment >= 0.5:
		return MoodAppreciative
	case sentiment >= 0.2:
		if dominantDrive == "curiosity" {
			return MoodCurious
		}
		return MoodFriendly
	case sentiment <= -0.5:
		return MoodDefensive
	case sentiment <= -0.2:
		if old == MoodDefensive {
			return MoodDefensive
		}
		return MoodThoughtful
	}

	switch dominantDrive {
	case "curiosity":
		return MoodCurious
	case "connection":
		return MoodFriendly
	case "safety":
		return MoodThoughtful
	case "boredom":
		return MoodRestless
	}
	return old
}

func ladderIndex(m Mood) int {
	for i, mood := range moodLadder {
		if mood == m {
			return i
		}
	}
	// Unknown moods sit at the neutral rung.
	return 3
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
