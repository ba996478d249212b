package testutils

import (
	"context"
	"fmt"

	"github.com/inwardlabs/psyche/pkg/responder"
)

// MockResponder is a test responder that records payloads and returns
// configurable replies.
type MockResponder struct {
	// Payloads accumulates every payload passed to Generate.
	Payloads []responder.ContextPayload

	// Reply is returned for every call when set.
	Reply string

	// Fail causes Generate to return an error.
	Fail bool

	// Block causes Generate to wait until the context is done.
	Block bool
}

func NewMockResponder(reply string) *MockResponder {
	return &MockResponder{Reply: reply}
}

func (m *MockResponder) Generate(ctx context.Context, payload responder.ContextPayload) (responder.Reply, error) {
	m.Payloads = append(m.Payloads, payload)

	if m.Block {
		<-ctx.Done()
		return responder.Reply{}, ctx.Err()
	}
	if m.Fail {
		return responder.Reply{}, fmt.Errorf("mock responder failure")
	}
	return responder.Reply{Text: m.Reply}, nil
}

func (m *MockResponder) Close() error {
	return nil
}
