package nop_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/inwardlabs/psyche/pkg/eventstream"
	"github.com/inwardlabs/psyche/pkg/eventstream/nop"
)

var _ = Describe("Publisher", func() {
	It("creates a non-nil publisher", func() {
		p := nop.NewPublisher()
		Expect(p).NotTo(BeNil())
	})

	It("returns ErrNilTurnEvent for nil turn events", func() {
		p := nop.NewPublisher()
		err := p.PublishTurn(context.Background(), nil)
		Expect(err).To(MatchError(eventstream.ErrNilTurnEvent))
	})

	It("returns ErrNilDreamEvent for nil dream events", func() {
		p := nop.NewPublisher()
		err := p.PublishDream(context.Background(), nil)
		Expect(err).To(MatchError(eventstream.ErrNilDreamEvent))
	})

	It("succeeds for non-nil events", func() {
		p := nop.NewPublisher()
		Expect(p.PublishTurn(context.Background(), &eventstream.TurnCompletedEvent{})).To(Succeed())
		Expect(p.PublishDream(context.Background(), &eventstream.DreamIntegratedEvent{})).To(Succeed())
	})

	It("closes successfully", func() {
		p := nop.NewPublisher()
		Expect(p.Close()).To(Succeed())
	})
})
