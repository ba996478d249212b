package mcp

import (
	"context"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/inwardlabs/psyche/pkg/dream"
	"github.com/inwardlabs/psyche/pkg/engine"
	"github.com/inwardlabs/psyche/pkg/memory"
	"github.com/inwardlabs/psyche/pkg/memory/inmemory"
	"github.com/inwardlabs/psyche/pkg/recall"
	"github.com/inwardlabs/psyche/pkg/sentiment"
	testutils "github.com/inwardlabs/psyche/pkg/utils/test"
	"github.com/inwardlabs/psyche/pkg/values"
	vectorinmemory "github.com/inwardlabs/psyche/pkg/vector/inmemory"
)

// buildMind assembles a mind with an optional recall index, returning the
// long-term store for seeding.
func buildMind(index *recall.Index) (*engine.Mind, memory.Driver) {
	logger := zap.NewNop()

	vs, err := values.NewSystem(values.Defaults(), values.DefaultReshapeThreshold)
	Expect(err).NotTo(HaveOccurred())

	weaver, err := dream.NewWeaver(dream.DefaultParams(), dream.DefaultThemes(), rand.New(rand.NewSource(7)), logger)
	Expect(err).NotTo(HaveOccurred())

	ltm := inmemory.NewDriver(memory.DefaultParams())

	mind, err := engine.New(engine.DefaultConfig(), engine.Deps{
		LongTerm:  ltm,
		Analyzer:  sentiment.NewLexicon(),
		Responder: testutils.NewMockResponder("Noted."),
		Values:    vs,
		Weaver:    weaver,
		Publisher: testutils.NewMockPublisher(),
		Recall:    index,
		Logger:    logger,
	})
	Expect(err).NotTo(HaveOccurred())

	return mind, ltm
}

var _ = Describe("Mind tools", func() {
	var (
		server *Server
		ltm    memory.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		var mind *engine.Mind
		mind, ltm = buildMind(nil)
		server = &Server{config: Config{Mind: mind, Logger: zap.NewNop()}}
		ctx = context.TODO()
	})

	Describe("handleMindState", func() {
		It("returns the current snapshot", func() {
			result, output, err := server.handleMindState(ctx, nil, MindStateInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(output.State.Mood).NotTo(BeEmpty())
			Expect(output.State.Drives).NotTo(BeEmpty())
		})
	})

	Describe("handleMemoryQuery", func() {
		It("requires tags", func() {
			result, _, err := server.handleMemoryQuery(ctx, nil, MemoryQueryInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
		})

		It("returns matching memories", func() {
			item := memory.NewItem(memory.SpeakerUser, "the lighthouse keeper kept a journal", []string{"lighthouse"}, 0.9)
			Expect(ltm.Promote(ctx, item)).To(Succeed())

			result, output, err := server.handleMemoryQuery(ctx, nil, MemoryQueryInput{Tags: []string{"lighthouse"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(output.Count).To(Equal(1))
			Expect(output.Memories[0].Text).To(ContainSubstring("lighthouse"))
		})

		It("returns an empty set for unknown tags", func() {
			_, output, err := server.handleMemoryQuery(ctx, nil, MemoryQueryInput{Tags: []string{"nothing"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(output.Count).To(Equal(0))
			Expect(output.Memories).NotTo(BeNil())
		})
	})

	Describe("handleRecall", func() {
		It("requires a query", func() {
			result, _, err := server.handleRecall(ctx, nil, RecallInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
		})

		It("reports when no recall index is wired", func() {
			result, _, err := server.handleRecall(ctx, nil, RecallInput{Query: "lighthouse"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
		})

		It("returns indexed memories when recall is wired", func() {
			index := recall.NewIndex(testutils.NewMockEmbedder(), vectorinmemory.NewDriver(), zap.NewNop())
			mind, store := buildMind(index)
			wired := &Server{config: Config{Mind: mind, Logger: zap.NewNop()}}

			item := memory.NewItem(memory.SpeakerUser, "the lighthouse keeper kept a journal", []string{"lighthouse"}, 0.9)
			Expect(store.Promote(ctx, item)).To(Succeed())
			Expect(index.Add(ctx, item)).To(Succeed())

			result, output, err := wired.handleRecall(ctx, nil, RecallInput{Query: "lighthouse", TopK: 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(output.Count).To(Equal(1))
			Expect(output.Memories[0].Text).To(ContainSubstring("lighthouse"))
		})
	})
})
