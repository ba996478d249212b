package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/inwardlabs/psyche/pkg/dream"
	"github.com/inwardlabs/psyche/pkg/experience"
)

// Command prefixes recognized ahead of the normal turn protocol.
const (
	cmdReflect   = "reflect"
	cmdDream     = "dream"
	cmdAddGoal   = "add goal:"
	cmdKnowledge = "what do you know about"
)

// dispatchCommand intercepts command inputs. Returns handled=false for
// ordinary conversation. Callers hold mu.
func (m *Mind) dispatchCommand(ctx context.Context, input string) (TurnResult, bool) {
	lowered := strings.ToLower(input)

	switch {
	case lowered == cmdReflect:
		return m.commandResult(m.reflect()), true

	case lowered == cmdDream:
		return m.commandResult(m.dreamOnDemand(ctx)), true

	case strings.HasPrefix(lowered, cmdAddGoal):
		text := strings.TrimSpace(input[len(cmdAddGoal):])
		return m.commandResult(m.addGoal(text)), true

	case strings.HasPrefix(lowered, cmdKnowledge):
		topic := strings.TrimSpace(input[len(cmdKnowledge):])
		topic = strings.TrimRight(topic, "?.!")
		return m.commandResult(m.recallTopic(ctx, topic)), true
	}

	return TurnResult{}, false
}

func (m *Mind) commandResult(reply string) TurnResult {
	return TurnResult{
		Reply:      reply,
		Mood:       string(m.self.Mood),
		Energy:     m.self.Energy,
		Confidence: m.self.Confidence,
		Outcome:    experience.OutcomeNeutral,
		Command:    true,
	}
}

// reflect renders the agent's view of itself: identity, affect, outcome
// trend, and goals.
func (m *Mind) reflect() string {
	var b strings.Builder

	b.WriteString(m.traits.Identity())
	fmt.Fprintf(&b, " Right now I feel %s, with energy %.2f and confidence %.2f.",
		m.self.Mood, m.self.Energy, m.self.Confidence)

	trend := m.expLog.RecentTrend(m.cfg.TrendWindow)
	if trend[experience.OutcomeFriction] >= m.cfg.FrictionAlert {
		b.WriteString(" I've noticed friction creeping into our recent exchanges; something isn't working the way it used to.")
	} else if trend[experience.OutcomeJoy]+trend[experience.OutcomeSuccess] > 0.5 {
		b.WriteString(" Our recent exchanges have gone well.")
	}

	fmt.Fprintf(&b, " Goals: %s.", m.goals.Summary())

	if m.lastDream != nil {
		fmt.Fprintf(&b, " My last dream was about %s.", m.lastDream.Theme)
	}

	return b.String()
}

// dreamOnDemand runs a forced dream cycle and narrates the result. Forced
// cycles skip the energy gate; only the memory count can refuse one.
func (m *Mind) dreamOnDemand(ctx context.Context) string {
	result, err := m.runDream(ctx, true)
	switch {
	case errors.Is(err, dream.ErrInsufficientMemories):
		return "I don't have enough memories to dream on yet."
	case err != nil:
		return "I tried to dream, but something pulled me back."
	}
	return result.Item.Text
}

// addGoal registers a goal and confirms it.
func (m *Mind) addGoal(text string) string {
	goal, added := m.goals.Add(text)
	if text == "" {
		return "I need the goal spelled out. Try: add goal: learn something new."
	}
	if !added {
		return fmt.Sprintf("I'm already working toward: %s.", goal.Text)
	}
	return fmt.Sprintf("Noted. I'll keep working toward: %s.", goal.Text)
}

// recallTopic answers "what do you know about X" from long-term memory,
// semantic first when an index is wired.
func (m *Mind) recallTopic(ctx context.Context, topic string) string {
	if topic == "" {
		return "About what? Give me a topic."
	}

	analysis := m.analyzer.Analyze(topic)
	memories := m.lookupMemories(ctx, topic, analysis.Tags)

	if len(memories) == 0 {
		return fmt.Sprintf("I don't know anything about %s yet. Tell me about it?", topic)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here's what I remember about %s:", topic)
	for _, text := range memories {
		b.WriteString("\n- " + text)
	}
	return b.String()
}
