package engine

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inwardlabs/psyche/pkg/drives"
	"github.com/inwardlabs/psyche/pkg/eventstream"
	"github.com/inwardlabs/psyche/pkg/experience"
	"github.com/inwardlabs/psyche/pkg/memory"
	"github.com/inwardlabs/psyche/pkg/responder"
	"github.com/inwardlabs/psyche/pkg/selfstate"
	"github.com/inwardlabs/psyche/pkg/values"
)

// fallbackReply is spoken when the responder fails or times out. The turn
// still commits with a failure outcome.
const fallbackReply = "I lost my train of thought. Could you say that again?"

// agentMemoryImportance is the importance of the agent's own replies in
// short-term memory. Low on purpose: the agent's words rarely deserve
// long-term promotion.
const agentMemoryImportance = 0.3

// TurnResult is what a processed turn hands back to the caller.
type TurnResult struct {
	InteractionID string             `json:"interaction_id"`
	Reply         string             `json:"reply"`
	Mood          string             `json:"mood"`
	Energy        float64            `json:"energy"`
	Confidence    float64            `json:"confidence"`
	Outcome       experience.Outcome `json:"outcome"`
	Reshaped      bool               `json:"reshaped"`
	Command       bool               `json:"command"`
}

// ProcessTurn runs one full interaction. Commands short-circuit the protocol;
// everything else flows through sentiment, values, memory, drives, mood,
// response generation, and outcome recording, committing under one lock.
func (m *Mind) ProcessTurn(ctx context.Context, input string) (TurnResult, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return TurnResult{}, ErrEmptyInput
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if result, handled := m.dispatchCommand(ctx, input); handled {
		return result, nil
	}

	interactionID := uuid.NewString()

	// Perception: the analyzer is a stateless collaborator whose score and
	// tags feed every later step. Novelty bookkeeping happens here too.
	analysis := m.analyzer.Analyze(input)
	novel := 0
	for _, tag := range analysis.Tags {
		if _, seen := m.seenTags[tag]; !seen {
			m.seenTags[tag] = struct{}{}
			novel++
		}
	}

	// Remember the input; a full buffer evicts the oldest item, which may
	// earn promotion into long-term memory.
	importance := 0.4 + 0.4*math.Abs(analysis.Score)
	userItem := memory.NewItem(memory.SpeakerUser, input, analysis.Tags, importance)
	if evicted, ok := m.stm.Append(userItem); ok {
		m.promote(ctx, evicted)
	}

	// Sentiment colors mood against the drive standings as the turn arrived;
	// the drives tick afterward.
	m.self = selfstate.Next(m.self, analysis.Score, m.drives.Dominant().Name, m.cfg.SelfParams)

	m.drives.Tick(drives.Signals{NovelTags: novel, Sentiment: analysis.Score})
	dominant := m.drives.Dominant()
	intents := m.drives.Intents()

	// The value judgment flags the stored input itself; violated principle
	// names ride along as tags so promotion carries them into long-term
	// memory.
	judgment := m.values.Evaluate(input, values.Context{Speaker: "user", Mood: string(m.self.Mood), Tags: analysis.Tags})
	if !judgment.Aligned {
		m.self = selfstate.ApplyViolation(m.self, m.cfg.SelfParams)
		m.stm.TagLast(judgment.Violated...)
	}

	payload := m.assemblePayload(ctx, input, analysis.Tags, dominant.Name, intents, judgment)

	replyText, generated := m.generate(ctx, payload)

	reshaped := false
	if generated {
		verdict := m.values.FilterOrReshape(replyText, values.Context{Speaker: "agent", Mood: string(m.self.Mood)})
		replyText = verdict.Text
		reshaped = verdict.Action == values.ActionReshape
	}

	outcome := classifyOutcome(generated, analysis.Score, judgment.Aligned, reshaped)

	rec := experience.NewRecord(interactionID, outcome, judgment.Note)
	m.expLog.Append(rec)
	m.traits.ApplyExperience(rec)
	m.self = selfstate.ApplyOutcome(m.self, outcome, m.cfg.SelfParams)

	if evicted, ok := m.stm.Append(memory.NewItem(memory.SpeakerAgent, replyText, analysis.Tags, agentMemoryImportance)); ok {
		m.promote(ctx, evicted)
	}

	m.publishTurn(ctx, interactionID, outcome, dominant.Name, reshaped)

	m.logger.Debug("turn processed",
		zap.String("interaction_id", interactionID),
		zap.String("mood", string(m.self.Mood)),
		zap.String("outcome", string(outcome)),
		zap.Int("novel_tags", novel),
	)

	return TurnResult{
		InteractionID: interactionID,
		Reply:         replyText,
		Mood:          string(m.self.Mood),
		Energy:        m.self.Energy,
		Confidence:    m.self.Confidence,
		Outcome:       outcome,
		Reshaped:      reshaped,
	}, nil
}

// generate asks the responder for a reply under the configured timeout.
// Returns the fallback and false when generation fails; the turn goes on.
func (m *Mind) generate(ctx context.Context, payload responder.ContextPayload) (string, bool) {
	genCtx := ctx
	if m.cfg.ResponderTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, m.cfg.ResponderTimeout)
		defer cancel()
	}

	reply, err := m.responder.Generate(genCtx, payload)
	if err != nil {
		m.logger.Warn("responder failed, using fallback",
			zap.Error(err),
		)
		return fallbackReply, false
	}
	return reply.Text, true
}

// assemblePayload gathers everything the responder may draw on. Memory lookup
// prefers semantic recall when an index is wired, tag search otherwise.
func (m *Mind) assemblePayload(ctx context.Context, input string, tags []string, dominantDrive string, intents []string, judgment values.Judgment) responder.ContextPayload {
	memories := m.lookupMemories(ctx, input, tags)

	var transcript []string
	for _, item := range m.stm.Snapshot() {
		transcript = append(transcript, string(item.Speaker)+": "+item.Text)
	}

	return responder.ContextPayload{
		Input:         input,
		Transcript:    transcript,
		Memories:      memories,
		Mood:          string(m.self.Mood),
		Energy:        m.self.Energy,
		Confidence:    m.self.Confidence,
		DominantDrive: dominantDrive,
		Intents:       intents,
		ValueFlags:    append([]string(nil), judgment.Violated...),
		ValueNote:     judgment.Note,
		Goals:         m.goals.Summary(),
		Identity:      m.traits.Identity(),
	}
}

// lookupMemories returns long-term memory texts relevant to the input.
func (m *Mind) lookupMemories(ctx context.Context, input string, tags []string) []string {
	var texts []string
	seen := make(map[string]struct{})

	if m.recall != nil {
		hits, err := m.recall.Search(ctx, input, m.cfg.RecallLimit)
		if err != nil {
			m.logger.Warn("semantic recall failed, falling back to tags",
				zap.Error(err),
			)
		}
		for _, hit := range hits {
			item, err := m.ltm.Resolve(ctx, hit.ID)
			if err != nil || item.Retired() {
				continue
			}
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			texts = append(texts, item.Text)
		}
	}

	if len(texts) < m.cfg.RecallLimit {
		queryTags := append(append([]string(nil), tags...), m.goals.TagHints()...)
		items, err := m.ltm.Query(ctx, queryTags, m.cfg.RecallLimit)
		if err != nil {
			m.logger.Warn("long-term memory query failed",
				zap.Error(err),
			)
			return texts
		}
		for _, item := range items {
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			texts = append(texts, item.Text)
			if len(texts) >= m.cfg.RecallLimit {
				break
			}
		}
	}

	return texts
}

// promote moves an evicted short-term item into long-term memory when it
// clears the threshold. Expired items drop silently.
func (m *Mind) promote(ctx context.Context, evicted memory.Item) {
	if evicted.Expired(m.now()) || evicted.Importance < m.cfg.PromotionThreshold {
		return
	}

	if err := m.ltm.Promote(ctx, evicted); err != nil {
		m.logger.Error("promoting memory failed",
			zap.String("item_id", evicted.ID),
			zap.Error(err),
		)
		return
	}

	if m.recall != nil {
		if err := m.recall.Add(ctx, evicted); err != nil {
			m.logger.Warn("indexing promoted memory failed",
				zap.String("item_id", evicted.ID),
				zap.Error(err),
			)
		}
	}

	m.logger.Debug("promoted memory",
		zap.String("item_id", evicted.ID),
		zap.Float64("importance", evicted.Importance),
	)
}

// classifyOutcome maps how the turn went to an experience outcome. Failure
// outranks everything; value trouble reads as friction before sentiment gets
// a say.
func classifyOutcome(generated bool, score float64, aligned, reshaped bool) experience.Outcome {
	switch {
	case !generated:
		return experience.OutcomeFailure
	case !aligned || reshaped:
		return experience.OutcomeFriction
	case score >= 0.5:
		return experience.OutcomeJoy
	case score >= 0.2:
		return experience.OutcomeSuccess
	case score <= -0.3:
		return experience.OutcomeFriction
	default:
		return experience.OutcomeNeutral
	}
}

// publishTurn emits the turn event. Best effort only.
func (m *Mind) publishTurn(ctx context.Context, interactionID string, outcome experience.Outcome, dominantDrive string, reshaped bool) {
	event := &eventstream.TurnCompletedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeTurnCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     m.now(),
		Turn: eventstream.TurnMeta{
			InteractionID: interactionID,
			Mood:          string(m.self.Mood),
			Energy:        m.self.Energy,
			Confidence:    m.self.Confidence,
			Outcome:       string(outcome),
			DominantDrive: dominantDrive,
			Reshaped:      reshaped,
		},
	}

	if err := m.publisher.PublishTurn(ctx, event); err != nil {
		m.logger.Warn("publishing turn event failed",
			zap.Error(err),
		)
	}
}
