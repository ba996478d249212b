package traits_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/inwardlabs/psyche/pkg/experience"
	"github.com/inwardlabs/psyche/pkg/traits"
)

func weight(e *traits.Engine, name string) float64 {
	for _, t := range e.Snapshot() {
		if t.Name == name {
			return t.Weight
		}
	}
	return -1
}

var _ = Describe("Engine", func() {
	var engine *traits.Engine

	BeforeEach(func() {
		engine = traits.NewEngine(traits.DefaultDeltas())
		Expect(engine.Validate()).To(Succeed())
	})

	Describe("Reinforce", func() {
		It("keeps weights within bounds for any reinforcement sequence", func() {
			for i := 0; i < 100; i++ {
				engine.Reinforce(traits.Caution, 0.2)
			}
			Expect(weight(engine, traits.Caution)).To(Equal(1.0))

			for i := 0; i < 100; i++ {
				engine.Reinforce(traits.Caution, -0.3)
			}
			Expect(weight(engine, traits.Caution)).To(BeZero())
		})

		It("ignores unknown traits", func() {
			before := engine.Snapshot()
			engine.Reinforce("stubbornness", 0.5)
			Expect(engine.Snapshot()).To(Equal(before))
		})
	})

	Describe("ApplyExperience", func() {
		It("shifts traits by the outcome's delta vector", func() {
			applied := engine.ApplyExperience(experience.NewRecord("turn-1", experience.OutcomeFailure, ""))
			Expect(applied).To(BeTrue())
			Expect(weight(engine, traits.Caution)).To(BeNumerically("~", 0.55, 1e-9))
			Expect(weight(engine, traits.Resilience)).To(BeNumerically("~", 0.48, 1e-9))
		})

		It("is replay-safe: the same record id applies exactly once", func() {
			rec := experience.NewRecord("turn-2", experience.OutcomeSuccess, "")

			Expect(engine.ApplyExperience(rec)).To(BeTrue())
			after := engine.Snapshot()

			Expect(engine.ApplyExperience(rec)).To(BeFalse())
			Expect(engine.Snapshot()).To(Equal(after))
		})

		It("leaves traits untouched on neutral outcomes", func() {
			before := engine.Snapshot()
			engine.ApplyExperience(experience.NewRecord("turn-3", experience.OutcomeNeutral, ""))
			Expect(engine.Snapshot()).To(Equal(before))
		})
	})

	Describe("Top", func() {
		It("ranks by weight with stable name tie-breaks", func() {
			engine.Reinforce(traits.Empathy, 0.2)
			engine.Reinforce(traits.Caution, 0.2)

			top := engine.Top(3)
			Expect(top).To(HaveLen(3))
			Expect(top[0].Name).To(Equal(traits.Caution))
			Expect(top[1].Name).To(Equal(traits.Empathy))
			// Remaining traits are tied at 0.5; the first by name wins.
			Expect(top[2].Name).To(Equal(traits.Candor))
		})
	})
})
