package memory_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/inwardlabs/psyche/pkg/memory"
)

var _ = Describe("ShortTerm", func() {
	It("never exceeds its capacity", func() {
		stm := memory.NewShortTerm(5)
		for i := 0; i < 20; i++ {
			stm.Append(memory.NewItem(memory.SpeakerUser, fmt.Sprintf("message %d", i), nil, 0.5))
			Expect(stm.Len()).To(BeNumerically("<=", 5))
		}
	})

	It("evicts the oldest item once full", func() {
		stm := memory.NewShortTerm(5)
		first := memory.NewItem(memory.SpeakerUser, "the very first thing", []string{"greeting"}, 0.9)
		stm.Append(first)

		for i := 0; i < 4; i++ {
			_, ok := stm.Append(memory.NewItem(memory.SpeakerUser, fmt.Sprintf("filler %d", i), nil, 0.1))
			Expect(ok).To(BeFalse())
		}

		evicted, ok := stm.Append(memory.NewItem(memory.SpeakerUser, "the sixth thing", nil, 0.1))
		Expect(ok).To(BeTrue())
		Expect(evicted.ID).To(Equal(first.ID))
		Expect(evicted.Text).To(Equal("the very first thing"))
	})

	It("returns snapshots ordered most-recent-last", func() {
		stm := memory.NewShortTerm(3)
		stm.Append(memory.NewItem(memory.SpeakerUser, "one", nil, 0.5))
		stm.Append(memory.NewItem(memory.SpeakerAgent, "two", nil, 0.5))

		snap := stm.Snapshot()
		Expect(snap).To(HaveLen(2))
		Expect(snap[0].Text).To(Equal("one"))
		Expect(snap[1].Text).To(Equal("two"))
	})

	It("snapshot mutations do not leak back into the buffer", func() {
		stm := memory.NewShortTerm(3)
		stm.Append(memory.NewItem(memory.SpeakerUser, "hello", []string{"greeting"}, 0.5))

		snap := stm.Snapshot()
		snap[0].Tags[0] = "mutated"

		Expect(stm.Snapshot()[0].Tags).To(Equal([]string{"greeting"}))
	})

	It("tags and boosts the most recent item in place", func() {
		stm := memory.NewShortTerm(3)
		stm.Append(memory.NewItem(memory.SpeakerUser, "hello", nil, 0.2))
		stm.TagLast("greeting", "greeting")
		stm.MarkLastImportance(0.8)

		last := stm.Snapshot()[0]
		Expect(last.Tags).To(Equal([]string{"greeting"}))
		Expect(last.Importance).To(Equal(0.8))
	})
})
