package sentiment_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/inwardlabs/psyche/pkg/sentiment"
)

var _ = Describe("Lexicon", func() {
	var analyzer *sentiment.Lexicon

	BeforeEach(func() {
		analyzer = sentiment.NewLexicon()
	})

	It("scores positive text above zero", func() {
		r := analyzer.Analyze("this is wonderful, thanks!")
		Expect(r.Score).To(BeNumerically(">", 0.5))
	})

	It("scores negative text below zero", func() {
		r := analyzer.Analyze("that was a terrible, awful idea")
		Expect(r.Score).To(BeNumerically("<", -0.5))
	})

	It("scores unfamiliar text as neutral", func() {
		r := analyzer.Analyze("the tide tables changed on tuesday")
		Expect(r.Score).To(BeZero())
	})

	It("averages mixed valences", func() {
		r := analyzer.Analyze("good but boring")
		Expect(r.Score).To(BeNumerically("~", (0.6-0.4)/2, 1e-9))
	})

	It("extracts sorted content-word tags without stop words", func() {
		r := analyzer.Analyze("Tell me about the old lighthouse keeper")
		Expect(r.Tags).To(Equal([]string{"keeper", "lighthouse"}))
	})

	It("caps tags at five", func() {
		r := analyzer.Analyze("albatross beacon cliff driftwood estuary foghorn")
		Expect(r.Tags).To(HaveLen(5))
	})

	It("is deterministic", func() {
		a := analyzer.Analyze("I love this amazing lighthouse")
		b := analyzer.Analyze("I love this amazing lighthouse")
		Expect(a).To(Equal(b))
	})
})
