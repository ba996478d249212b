package selfstate_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/inwardlabs/psyche/pkg/experience"
	"github.com/inwardlabs/psyche/pkg/selfstate"
)

var _ = Describe("State transitions", func() {
	var params selfstate.Params

	BeforeEach(func() {
		params = selfstate.DefaultParams()
	})

	Describe("Next", func() {
		It("turns defensive into appreciative on strongly positive sentiment", func() {
			s := selfstate.New()
			s.Mood = selfstate.MoodDefensive

			got := selfstate.Next(s, 0.8, "connection", params)
			Expect(got.Mood).To(Equal(selfstate.MoodAppreciative))
		})

		It("goes defensive on strongly negative sentiment", func() {
			got := selfstate.Next(selfstate.New(), -0.7, "curiosity", params)
			Expect(got.Mood).To(Equal(selfstate.MoodDefensive))
		})

		It("lets the dominant drive color neutral input", func() {
			got := selfstate.Next(selfstate.New(), 0, "curiosity", params)
			Expect(got.Mood).To(Equal(selfstate.MoodCurious))
		})

		It("costs energy every turn and never goes below zero", func() {
			s := selfstate.New()
			for i := 0; i < 200; i++ {
				s = selfstate.Next(s, 0, "", params)
				Expect(s.Energy).To(BeNumerically(">=", 0))
			}
			Expect(s.Energy).To(BeZero())
		})

		It("is deterministic for identical inputs", func() {
			s := selfstate.New()
			a := selfstate.Next(s, 0.3, "connection", params)
			b := selfstate.Next(s, 0.3, "connection", params)
			Expect(a).To(Equal(b))
		})
	})

	Describe("Recover", func() {
		It("restores energy during idle ticks, bounded by 1", func() {
			s := selfstate.New()
			s.Energy = 0.97

			s = selfstate.Recover(s, params)
			Expect(s.Energy).To(Equal(1.0))
		})
	})

	Describe("ApplyOutcome", func() {
		It("raises confidence on success and lowers it on failure, bounded", func() {
			s := selfstate.New()
			up := selfstate.ApplyOutcome(s, experience.OutcomeSuccess, params)
			Expect(up.Confidence).To(BeNumerically(">", s.Confidence))

			down := selfstate.ApplyOutcome(s, experience.OutcomeFailure, params)
			Expect(down.Confidence).To(BeNumerically("<", s.Confidence))

			for i := 0; i < 100; i++ {
				s = selfstate.ApplyOutcome(s, experience.OutcomeFailure, params)
			}
			Expect(s.Confidence).To(BeZero())
		})

		It("ignores neutral outcomes", func() {
			s := selfstate.New()
			Expect(selfstate.ApplyOutcome(s, experience.OutcomeNeutral, params)).To(Equal(s))
		})
	})

	Describe("ShiftToward", func() {
		It("walks the mood ladder one step per shift", func() {
			s := selfstate.New() // neutral

			s = selfstate.ShiftToward(s, 1)
			Expect(s.Mood).To(Equal(selfstate.MoodCurious))

			s = selfstate.ShiftToward(s, -1)
			s = selfstate.ShiftToward(s, -1)
			Expect(s.Mood).To(Equal(selfstate.MoodThoughtful))

			s = selfstate.ShiftToward(s, 0)
			Expect(s.Mood).To(Equal(selfstate.MoodThoughtful))
		})

		It("does not walk past the ladder ends", func() {
			s := selfstate.State{Mood: selfstate.MoodAppreciative}
			Expect(selfstate.ShiftToward(s, 1).Mood).To(Equal(selfstate.MoodAppreciative))

			s = selfstate.State{Mood: selfstate.MoodDefensive}
			Expect(selfstate.ShiftToward(s, -1).Mood).To(Equal(selfstate.MoodDefensive))
		})
	})
})
