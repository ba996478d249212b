package goals_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/inwardlabs/psyche/pkg/goals"
)

var _ = Describe("Tracker", func() {
	var tracker *goals.Tracker

	BeforeEach(func() {
		tracker = goals.NewTracker()
	})

	Describe("Add", func() {
		It("registers an active goal", func() {
			g, added := tracker.Add("learn about lighthouses")
			Expect(added).To(BeTrue())
			Expect(g.ID).ToNot(BeEmpty())
			Expect(g.Status).To(Equal(goals.StatusActive))
			Expect(tracker.Active()).To(HaveLen(1))
		})

		It("rejects empty text", func() {
			_, added := tracker.Add("   ")
			Expect(added).To(BeFalse())
			Expect(tracker.Active()).To(BeEmpty())
		})

		It("returns the existing goal on duplicate text", func() {
			first, _ := tracker.Add("learn go")
			second, added := tracker.Add("Learn GO")
			Expect(added).To(BeFalse())
			Expect(second.ID).To(Equal(first.ID))
			Expect(tracker.Active()).To(HaveLen(1))
		})
	})

	Describe("MarkProgress", func() {
		It("completes a goal at full progress", func() {
			g, _ := tracker.Add("finish the draft")

			Expect(tracker.MarkProgress(g.ID, 0.6)).To(BeTrue())
			Expect(tracker.Active()).To(HaveLen(1))

			Expect(tracker.MarkProgress(g.ID, 0.6)).To(BeTrue())
			Expect(tracker.Active()).To(BeEmpty())
			Expect(tracker.All()[0].Status).To(Equal(goals.StatusCompleted))
			Expect(tracker.All()[0].Progress).To(Equal(1.0))
		})

		It("ignores unknown ids", func() {
			Expect(tracker.MarkProgress("nope", 0.5)).To(BeFalse())
		})

		It("floors progress at zero", func() {
			g, _ := tracker.Add("stay organized")
			tracker.MarkProgress(g.ID, -0.5)
			Expect(tracker.Active()[0].Progress).To(BeZero())
		})
	})

	Describe("Abandon", func() {
		It("retires a goal without completing it", func() {
			g, _ := tracker.Add("alphabetize the spice rack")
			Expect(tracker.Abandon(g.ID)).To(BeTrue())
			Expect(tracker.Active()).To(BeEmpty())
			Expect(tracker.All()[0].Status).To(Equal(goals.StatusAbandoned))
		})
	})

	Describe("Summary", func() {
		It("joins active goal text", func() {
			tracker.Add("learn go")
			tracker.Add("read more fiction")
			Expect(tracker.Summary()).To(Equal("learn go; read more fiction"))
		})

		It("reports when nothing is active", func() {
			Expect(tracker.Summary()).To(Equal("no active goals"))
		})
	})

	Describe("TagHints", func() {
		It("extracts deduplicated content words from active goals", func() {
			tracker.Add("learn about lighthouses")
			tracker.Add("photograph lighthouses at dusk")
			Expect(tracker.TagHints()).To(Equal([]string{"dusk", "learn", "lighthouses", "photograph"}))
		})
	})
})
