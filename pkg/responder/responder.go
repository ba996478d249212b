// Package responder turns an assembled cognitive context into the agent's
// reply. The stock implementation is rule-based and deterministic; an Ollama
// backed implementation generates free text from the same payload.
package responder

import "context"

// ContextPayload is everything the agent knows at the moment of replying. It
// is assembled by the orchestrator and serializable so external responders
// receive the same view the rule-based one does.
type ContextPayload struct {
	Input         string   `json:"input"`
	Transcript    []string `json:"transcript,omitempty"`
	Memories      []string `json:"memories,omitempty"`
	Mood          string   `json:"mood"`
	Energy        float64  `json:"energy"`
	Confidence    float64  `json:"confidence"`
	DominantDrive string   `json:"dominant_drive"`
	Intents       []string `json:"intents,omitempty"`
	ValueFlags    []string `json:"value_flags,omitempty"`
	ValueNote     string   `json:"value_note,omitempty"`
	Goals         string   `json:"goals,omitempty"`
	Identity      string   `json:"identity,omitempty"`
}

// Reply is a generated response.
type Reply struct {
	Text string `json:"text"`
}

// Responder generates a reply from the assembled context.
type Responder interface {
	// Generate produces a reply. Implementations must respect ctx
	// cancellation; the orchestrator enforces a deadline.
	Generate(ctx context.Context, payload ContextPayload) (Reply, error)

	// Close releases any resources held by the responder.
	Close() error
}
