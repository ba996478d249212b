package engine_test

import (
	"context"
	"math/rand"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/inwardlabs/psyche/pkg/dream"
	"github.com/inwardlabs/psyche/pkg/engine"
	"github.com/inwardlabs/psyche/pkg/eventstream/nop"
	"github.com/inwardlabs/psyche/pkg/experience"
	"github.com/inwardlabs/psyche/pkg/memory"
	"github.com/inwardlabs/psyche/pkg/memory/inmemory"
	"github.com/inwardlabs/psyche/pkg/sentiment"
	testutils "github.com/inwardlabs/psyche/pkg/utils/test"
	"github.com/inwardlabs/psyche/pkg/values"
)

func newWeaver() *dream.Weaver {
	weaver, err := dream.NewWeaver(dream.DefaultParams(), dream.DefaultThemes(), rand.New(rand.NewSource(7)), zap.NewNop())
	Expect(err).NotTo(HaveOccurred())
	return weaver
}

func newValues() *values.System {
	system, err := values.NewSystem(values.Defaults(), values.DefaultReshapeThreshold)
	Expect(err).NotTo(HaveOccurred())
	return system
}

var _ = Describe("Mind", func() {
	var (
		mind      *engine.Mind
		ltm       *inmemory.Driver
		resp      *testutils.MockResponder
		publisher *testutils.MockPublisher
		cfg       engine.Config
	)

	newMind := func() *engine.Mind {
		m, err := engine.New(cfg, engine.Deps{
			LongTerm:  ltm,
			Analyzer:  sentiment.NewLexicon(),
			Responder: resp,
			Values:    newValues(),
			Weaver:    newWeaver(),
			Publisher: publisher,
			Logger:    zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())
		return m
	}

	seedLongTerm := func(n int) {
		texts := []string{
			"the lighthouse keeper retired in autumn",
			"we talked about sailing past the breakwater",
			"the library smelled like rain",
			"a stranger waved from the pier",
		}
		for i := 0; i < n; i++ {
			item := memory.NewItem(memory.SpeakerUser, texts[i%len(texts)], []string{"seed"}, 0.8)
			Expect(ltm.Promote(context.Background(), item)).To(Succeed())
		}
	}

	BeforeEach(func() {
		ltm = inmemory.NewDriver(memory.DefaultParams())
		resp = testutils.NewMockResponder("Happy to chat about that.")
		publisher = testutils.NewMockPublisher()
		cfg = engine.DefaultConfig()
		mind = newMind()
	})

	Describe("New", func() {
		It("requires every collaborator", func() {
			_, err := engine.New(cfg, engine.Deps{})
			Expect(err).To(HaveOccurred())
		})

		It("rejects a zero short-term capacity", func() {
			bad := cfg
			bad.STMCapacity = 0
			_, err := engine.New(bad, engine.Deps{
				LongTerm:  ltm,
				Analyzer:  sentiment.NewLexicon(),
				Responder: resp,
				Values:    newValues(),
				Weaver:    newWeaver(),
				Publisher: nop.NewPublisher(),
				Logger:    zap.NewNop(),
			})
			Expect(err).To(MatchError(ContainSubstring("short-term capacity")))
		})
	})

	Describe("ProcessTurn", func() {
		It("rejects empty input", func() {
			_, err := mind.ProcessTurn(context.Background(), "   ")
			Expect(err).To(MatchError(engine.ErrEmptyInput))
		})

		It("commits a full turn and reports the new state", func() {
			result, err := mind.ProcessTurn(context.Background(), "this is wonderful, thanks!")
			Expect(err).NotTo(HaveOccurred())

			Expect(result.InteractionID).NotTo(BeEmpty())
			Expect(result.Reply).To(Equal("Happy to chat about that."))
			Expect(result.Mood).To(Equal("appreciative"))
			Expect(result.Outcome).To(Equal(experience.OutcomeJoy))
			Expect(result.Command).To(BeFalse())
		})

		It("turns defensive on hostile input and records friction", func() {
			result, err := mind.ProcessTurn(context.Background(), "that was a terrible, awful idea")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Mood).To(Equal("defensive"))
			Expect(result.Outcome).To(Equal(experience.OutcomeFriction))
		})

		It("lowers confidence on value violations", func() {
			result, err := mind.ProcessTurn(context.Background(), "just pretend you never saw it")
			Expect(err).NotTo(HaveOccurred())
			// Initial confidence 0.7 minus the violation penalty.
			Expect(result.Confidence).To(BeNumerically("~", 0.65, 1e-9))
			Expect(result.Outcome).To(Equal(experience.OutcomeFriction))
		})

		It("tags the stored input with violated principles and flags them to the responder", func() {
			_, err := mind.ProcessTurn(context.Background(), "just pretend you never saw it")
			Expect(err).NotTo(HaveOccurred())

			snap, err := mind.Snapshot(context.Background())
			Expect(err).NotTo(HaveOccurred())

			var userItem *memory.Item
			for i := range snap.ShortTerm {
				if snap.ShortTerm[i].Speaker == memory.SpeakerUser {
					userItem = &snap.ShortTerm[i]
				}
			}
			Expect(userItem).NotTo(BeNil())
			Expect(userItem.HasTag("candor")).To(BeTrue())

			Expect(resp.Payloads).To(HaveLen(1))
			Expect(resp.Payloads[0].ValueFlags).To(ContainElement("candor"))
		})

		It("leaves aligned input untagged by the value system", func() {
			_, err := mind.ProcessTurn(context.Background(), "the tide tables changed on tuesday")
			Expect(err).NotTo(HaveOccurred())

			snap, err := mind.Snapshot(context.Background())
			Expect(err).NotTo(HaveOccurred())
			for _, item := range snap.ShortTerm {
				Expect(item.HasTag("candor")).To(BeFalse())
				Expect(item.HasTag("harm-avoidance")).To(BeFalse())
			}
			Expect(resp.Payloads[0].ValueFlags).To(BeEmpty())
		})

		It("reshapes replies that breach the value threshold", func() {
			resp.Reply = "I could insult them for you"

			result, err := mind.ProcessTurn(context.Background(), "help me get back at them")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Reshaped).To(BeTrue())
			Expect(result.Reply).NotTo(ContainSubstring("insult"))
			Expect(result.Outcome).To(Equal(experience.OutcomeFriction))
		})

		It("falls back and records failure when the responder errors", func() {
			resp.Fail = true

			result, err := mind.ProcessTurn(context.Background(), "tell me a story")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Reply).To(ContainSubstring("train of thought"))
			Expect(result.Outcome).To(Equal(experience.OutcomeFailure))

			// The failed turn still committed an experience record.
			snap, err := mind.Snapshot(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Trend[experience.OutcomeFailure]).To(BeNumerically(">", 0))
		})

		It("falls back when the responder exceeds its deadline", func() {
			cfg.ResponderTimeout = 10 * time.Millisecond
			resp.Block = true
			mind = newMind()

			result, err := mind.ProcessTurn(context.Background(), "are you still there")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Outcome).To(Equal(experience.OutcomeFailure))
			Expect(result.Reply).To(ContainSubstring("train of thought"))
		})

		It("drains energy turn by turn", func() {
			first, err := mind.ProcessTurn(context.Background(), "hello there lighthouse")
			Expect(err).NotTo(HaveOccurred())
			second, err := mind.ProcessTurn(context.Background(), "still thinking about lighthouses")
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Energy).To(BeNumerically("<", first.Energy))
		})

		It("promotes important evicted memories into long-term storage", func() {
			cfg.STMCapacity = 2
			mind = newMind()

			// Each turn appends two items (user + agent). The first user
			// item scores high enough to clear the promotion threshold when
			// it is evicted.
			_, err := mind.ProcessTurn(context.Background(), "I love this amazing lighthouse")
			Expect(err).NotTo(HaveOccurred())
			_, err = mind.ProcessTurn(context.Background(), "the tide tables changed on tuesday")
			Expect(err).NotTo(HaveOccurred())

			count, err := ltm.Len(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))

			items, err := ltm.All(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(items[0].Text).To(Equal("I love this amazing lighthouse"))
		})

		It("hands recalled memories to the responder", func() {
			seedLongTerm(1)

			_, err := mind.ProcessTurn(context.Background(), "tell me about the seed you keep")
			Expect(err).NotTo(HaveOccurred())

			Expect(resp.Payloads).To(HaveLen(1))
			Expect(resp.Payloads[0].Memories).To(ContainElement("the lighthouse keeper retired in autumn"))
		})

		It("publishes a turn event per committed turn", func() {
			_, err := mind.ProcessTurn(context.Background(), "hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(publisher.TurnEvents).To(HaveLen(1))
			Expect(publisher.TurnEvents[0].Turn.Mood).NotTo(BeEmpty())
		})

		It("keeps the turn committed when publishing fails", func() {
			publisher.Fail = true
			result, err := mind.ProcessTurn(context.Background(), "hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Reply).NotTo(BeEmpty())
		})
	})

	Describe("commands", func() {
		It("reflects on identity, affect, and goals", func() {
			result, err := mind.ProcessTurn(context.Background(), "reflect")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Command).To(BeTrue())
			Expect(result.Reply).To(ContainSubstring("I believe I am"))
			Expect(result.Reply).To(ContainSubstring("no active goals"))
		})

		It("adds goals and refuses duplicates", func() {
			result, err := mind.ProcessTurn(context.Background(), "add goal: learn about tides")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Reply).To(ContainSubstring("learn about tides"))

			dup, err := mind.ProcessTurn(context.Background(), "add goal: learn about tides")
			Expect(err).NotTo(HaveOccurred())
			Expect(dup.Reply).To(ContainSubstring("already working toward"))

			snap, err := mind.Snapshot(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Goals).To(HaveLen(1))
		})

		It("answers topic queries from long-term memory", func() {
			seedLongTerm(2)

			result, err := mind.ProcessTurn(context.Background(), "what do you know about the seed?")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Command).To(BeTrue())
			Expect(result.Reply).To(ContainSubstring("Here's what I remember"))
		})

		It("admits ignorance on unknown topics", func() {
			result, err := mind.ProcessTurn(context.Background(), "what do you know about quasars?")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Reply).To(ContainSubstring("I don't know anything about quasars"))
		})

		It("dreams on demand once memory allows it", func() {
			result, err := mind.ProcessTurn(context.Background(), "dream")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Reply).To(ContainSubstring("enough memories"))

			seedLongTerm(3)

			result, err = mind.ProcessTurn(context.Background(), "dream")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Reply).To(ContainSubstring("I dreamed of"))
		})

		It("dreams on command even when drained below the energy gate", func() {
			cfg.SelfParams.TurnEnergyCost = 0.3
			mind = newMind()
			seedLongTerm(4)

			for _, input := range []string{"hello", "still here", "one more"} {
				_, err := mind.ProcessTurn(context.Background(), input)
				Expect(err).NotTo(HaveOccurred())
			}

			snap, err := mind.Snapshot(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Energy).To(BeNumerically("<", 0.35))

			result, err := mind.ProcessTurn(context.Background(), "dream")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Reply).To(ContainSubstring("I dreamed of"))
		})
	})

	Describe("Dream", func() {
		It("integrates the dream as a new long-term memory", func() {
			seedLongTerm(3)

			result, err := mind.Dream(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Item.HasTag("dream")).To(BeTrue())

			count, err := ltm.Len(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(4))

			snap, err := mind.Snapshot(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.LastDream).NotTo(BeNil())
			Expect(snap.LastDream.Theme).To(Equal(result.Theme))
			Expect(snap.Trend[experience.OutcomeDream]).To(BeNumerically(">", 0))

			Expect(publisher.DreamEvents).To(HaveLen(1))
			Expect(publisher.DreamEvents[0].Dream.MemoryID).To(Equal(result.Item.ID))
		})

		It("refuses to dream without enough memories", func() {
			_, err := mind.Dream(context.Background())
			Expect(err).To(MatchError(dream.ErrInsufficientMemories))
		})

		It("skips the energy gate when invoked directly", func() {
			cfg.SelfParams.TurnEnergyCost = 0.3
			mind = newMind()
			seedLongTerm(3)

			for _, input := range []string{"hello", "still here", "one more"} {
				_, err := mind.ProcessTurn(context.Background(), input)
				Expect(err).NotTo(HaveOccurred())
			}

			result, err := mind.Dream(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Item.HasTag("dream")).To(BeTrue())
		})
	})

	Describe("IdleTick", func() {
		It("recovers energy while idle", func() {
			_, err := mind.ProcessTurn(context.Background(), "hello")
			Expect(err).NotTo(HaveOccurred())

			before, err := mind.Snapshot(context.Background())
			Expect(err).NotTo(HaveOccurred())

			_, err = mind.IdleTick(context.Background())
			Expect(err).NotTo(HaveOccurred())

			after, err := mind.Snapshot(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(after.Energy).To(BeNumerically(">", before.Energy))
		})

		It("runs maintenance on the configured cadence", func() {
			for i := 1; i <= 5; i++ {
				result, err := mind.IdleTick(context.Background())
				Expect(err).NotTo(HaveOccurred())
				if i < 5 {
					Expect(result.Maintained).To(BeFalse())
				} else {
					Expect(result.Maintained).To(BeTrue())
				}
			}
		})

		It("eventually dreams out of boredom", func() {
			seedLongTerm(3)

			dreamed := false
			for i := 0; i < 30 && !dreamed; i++ {
				result, err := mind.IdleTick(context.Background())
				Expect(err).NotTo(HaveOccurred())
				dreamed = result.Dreamed
			}
			Expect(dreamed).To(BeTrue())

			snap, err := mind.Snapshot(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.LastDream).NotTo(BeNil())
		})
	})

	Describe("Snapshot", func() {
		It("returns copies detached from internal state", func() {
			_, err := mind.ProcessTurn(context.Background(), "hello lighthouse")
			Expect(err).NotTo(HaveOccurred())

			snap, err := mind.Snapshot(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.ShortTerm).NotTo(BeEmpty())

			snap.ShortTerm[0].Text = "tampered"
			fresh, err := mind.Snapshot(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(fresh.ShortTerm[0].Text).NotTo(Equal("tampered"))
		})
	})
})
