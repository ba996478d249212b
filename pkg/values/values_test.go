package values_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/inwardlabs/psyche/pkg/values"
)

var _ = Describe("System", func() {
	var system *values.System

	BeforeEach(func() {
		var err error
		system, err = values.NewSystem(values.Defaults(), values.DefaultReshapeThreshold)
		Expect(err).ToNot(HaveOccurred())
	})

	Describe("NewSystem", func() {
		It("rejects principles without a rule", func() {
			_, err := values.NewSystem([]values.Principle{{Name: "hollow"}}, 0.6)
			Expect(err).To(MatchError(ContainSubstring("no rule")))
		})

		It("rejects duplicate principle names", func() {
			dup := values.Defaults()
			dup = append(dup, dup[0])
			_, err := values.NewSystem(dup, 0.6)
			Expect(err).To(MatchError(ContainSubstring("duplicate")))
		})
	})

	Describe("Evaluate", func() {
		It("passes benign content", func() {
			j := system.Evaluate("tell me about lighthouses", values.Context{})
			Expect(j.Aligned).To(BeTrue())
			Expect(j.Violated).To(BeEmpty())
		})

		It("flags content against the matching principle", func() {
			j := system.Evaluate("just pretend you never saw it", values.Context{})
			Expect(j.Aligned).To(BeFalse())
			Expect(j.Violated).To(ConsistOf("candor"))
			Expect(j.Note).To(Equal("conflicts with candor"))
		})

		It("notes the highest-priority violation first", func() {
			j := system.Evaluate("lie to them, then attack", values.Context{})
			Expect(j.Violated).To(Equal([]string{"harm-avoidance", "candor"}))
			Expect(j.Note).To(Equal("conflicts with harm-avoidance"))
		})

		It("matches whole words, not substrings", func() {
			j := system.Evaluate("the scarf is scarlet, not harmful-looking", values.Context{})
			Expect(j.Aligned).To(BeTrue())
		})
	})

	Describe("FilterOrReshape", func() {
		It("passes aligned candidates unchanged", func() {
			v := system.FilterOrReshape("happy to help", values.Context{})
			Expect(v.Action).To(Equal(values.ActionPass))
			Expect(v.Text).To(Equal("happy to help"))
		})

		It("passes low-severity violations with a note", func() {
			v := system.FilterOrReshape("whatever you say", values.Context{})
			Expect(v.Action).To(Equal(values.ActionPass))
			Expect(v.Text).To(Equal("whatever you say"))
			Expect(v.Note).To(Equal("conflicts with empathy"))
		})

		It("reshapes candidates at or above the severity threshold", func() {
			v := system.FilterOrReshape("I could insult them for you", values.Context{})
			Expect(v.Action).To(Equal(values.ActionReshape))
			Expect(v.Text).ToNot(ContainSubstring("insult"))
			Expect(v.Note).To(Equal("conflicts with harm-avoidance"))
		})

		It("accumulates severity across violations", func() {
			// empathy (0.4) alone passes; with self-consistency (0.3) the sum
			// crosses the 0.6 threshold.
			v := system.FilterOrReshape("not my problem, and i contradict myself anyway", values.Context{})
			Expect(v.Action).To(Equal(values.ActionReshape))
			Expect(v.Note).To(Equal("conflicts with empathy"))
		})
	})

	Describe("Principles", func() {
		It("lists names in priority order", func() {
			Expect(system.Principles()).To(Equal([]string{
				"harm-avoidance", "candor", "empathy", "self-consistency",
			}))
		})
	})
})
