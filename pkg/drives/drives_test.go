package drives_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/inwardlabs/psyche/pkg/drives"
)

func level(s *drives.Set, name string) float64 {
	for _, d := range s.Snapshot() {
		if d.Name == name {
			return d.Level
		}
	}
	return -1
}

var _ = Describe("Set", func() {
	var set *drives.Set

	BeforeEach(func() {
		set = drives.NewSet(drives.DefaultParams())
		Expect(set.Validate()).To(Succeed())
	})

	Describe("Tick", func() {
		It("raises curiosity on novel tags", func() {
			before := level(set, drives.Curiosity)
			set.Tick(drives.Signals{NovelTags: 2})
			Expect(level(set, drives.Curiosity)).To(BeNumerically(">", before))
		})

		It("grows boredom through uneventful idle ticks", func() {
			before := level(set, drives.Boredom)
			for i := 0; i < 10; i++ {
				set.Tick(drives.Signals{Idle: true})
			}
			Expect(level(set, drives.Boredom)).To(BeNumerically(">", before))
		})

		It("collapses boredom after a dream", func() {
			for i := 0; i < 20; i++ {
				set.Tick(drives.Signals{Idle: true})
			}
			peak := level(set, drives.Boredom)

			set.Tick(drives.Signals{Idle: true, DreamCompleted: true})
			Expect(level(set, drives.Boredom)).To(BeNumerically("<", peak))
		})

		It("keeps every level within bounds over long runs", func() {
			for i := 0; i < 500; i++ {
				set.Tick(drives.Signals{Idle: i%2 == 0, NovelTags: i % 3, Sentiment: float64(i%5)/2 - 1})
				for _, d := range set.Snapshot() {
					Expect(d.Level).To(BeNumerically(">=", 0))
					Expect(d.Level).To(BeNumerically("<=", 1))
				}
			}
		})
	})

	Describe("Dominant", func() {
		It("returns the highest-level drive", func() {
			for i := 0; i < 30; i++ {
				set.Tick(drives.Signals{Idle: true})
			}
			Expect(set.Dominant().Name).To(Equal(drives.Boredom))
		})

		It("breaks ties by priority order", func() {
			// A fresh set ticked with full novelty and warm sentiment pushes
			// curiosity and connection toward the same target; curiosity wins
			// the priority order when levels meet.
			equal := drives.NewSet(drives.DefaultParams())
			for i := 0; i < 200; i++ {
				equal.Tick(drives.Signals{NovelTags: 1, Sentiment: 0.5})
			}
			Expect(equal.Dominant().Name).To(Equal(drives.Curiosity))
		})
	})

	Describe("Intents", func() {
		It("raises the dream intent once boredom crosses the threshold", func() {
			for i := 0; i < 50; i++ {
				set.Tick(drives.Signals{Idle: true})
			}
			Expect(set.Intents()).To(ContainElement(drives.IntentDream))
		})

		It("raises nothing below the threshold", func() {
			Expect(set.Intents()).To(BeEmpty())
		})
	})
})
