package eventstream_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/inwardlabs/psyche/pkg/eventstream"
)

var _ = Describe("Event", func() {
	It("marshals TurnCompletedEvent with expected top-level keys", func() {
		now := time.Unix(1735689600, 0).UTC()
		event := eventstream.TurnCompletedEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeTurnCompleted,
			EventID:       "evt_123",
			EmittedAt:     now,
			Turn: eventstream.TurnMeta{
				InteractionID: "turn_9",
				Mood:          "curious",
				Energy:        0.82,
				Confidence:    0.7,
				Outcome:       "success",
				DominantDrive: "curiosity",
				Promoted:      1,
			},
		}

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("turn"))
	})

	It("marshals DreamIntegratedEvent with expected top-level keys", func() {
		event := eventstream.DreamIntegratedEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeDreamIntegrated,
			EventID:       "evt_456",
			EmittedAt:     time.Unix(1735689600, 0).UTC(),
			Dream: eventstream.DreamMeta{
				Theme:      "a quiet shoreline",
				Valence:    0.4,
				SampledIDs: []string{"m1", "m2", "m3"},
				MemoryID:   "m9",
			},
		}

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("dream"))
		Expect(got).To(HaveKey("event_id"))
	})

	It("defines stable event constants", func() {
		Expect(eventstream.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(eventstream.EventTypeTurnCompleted).To(Equal("psyche.turn.completed"))
		Expect(eventstream.EventTypeDreamIntegrated).To(Equal("psyche.dream.integrated"))
	})

	It("provides sentinel errors for nil payload validation", func() {
		Expect(eventstream.ErrNilTurnEvent).To(HaveOccurred())
		Expect(eventstream.ErrNilDreamEvent).To(HaveOccurred())
	})
})
