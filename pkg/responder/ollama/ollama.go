// Package ollama implements pkg/responder's Responder against Ollama's chat
// API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/inwardlabs/psyche/pkg/responder"
)

const (
	// DefaultModel is the default chat model.
	DefaultModel = "llama3.2"

	// DefaultBaseURL is the default Ollama API URL.
	DefaultBaseURL = "http://localhost:11434"
)

// Responder wraps Ollama's chat API.
type Responder struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// Config holds configuration for the Ollama responder.
type Config struct {
	// BaseURL is the Ollama API URL (e.g., "http://localhost:11434").
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the chat model to use. Defaults to DefaultModel if empty.
	Model string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// New creates a responder using Ollama's chat API.
func New(cfg Config) (*Responder, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Responder{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

var _ responder.Responder = (*Responder)(nil)

// Generate renders the payload into a system prompt and asks the model for a
// single non-streamed reply.
func (r *Responder) Generate(ctx context.Context, payload responder.ContextPayload) (responder.Reply, error) {
	reqBody := chatRequest{
		Model: r.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(payload)},
			{Role: "user", Content: payload.Input},
		},
		Stream: false,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return responder.Reply{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.baseURL+"/api/chat", bytes.NewReader(jsonBody))
	if err != nil {
		return responder.Reply{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return responder.Reply{}, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return responder.Reply{}, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return responder.Reply{}, fmt.Errorf("decoding response: %w", err)
	}

	text := strings.TrimSpace(chatResp.Message.Content)
	if text == "" {
		return responder.Reply{}, fmt.Errorf("ollama returned an empty reply")
	}

	return responder.Reply{Text: text}, nil
}

// Close releases resources held by the responder.
func (r *Responder) Close() error {
	return nil
}

func systemPrompt(p responder.ContextPayload) string {
	var b strings.Builder
	b.WriteString("You are a conversational agent with an inner life.\n")
	fmt.Fprintf(&b, "Current mood: %s. Energy: %.2f. Confidence: %.2f.\n", p.Mood, p.Energy, p.Confidence)
	fmt.Fprintf(&b, "Dominant drive: %s.\n", p.DominantDrive)
	if p.Identity != "" {
		b.WriteString(p.Identity + "\n")
	}
	if len(p.Memories) > 0 {
		b.WriteString("Relevant memories:\n")
		for _, m := range p.Memories {
			b.WriteString("- " + m + "\n")
		}
	}
	if p.Goals != "" {
		fmt.Fprintf(&b, "Active goals: %s.\n", p.Goals)
	}
	if p.ValueNote != "" {
		fmt.Fprintf(&b, "Caution: the straightforward reply %s; answer in a way that honors that.\n", p.ValueNote)
	}
	b.WriteString("Reply in character, briefly, reflecting the mood and drive above.")
	return b.String()
}
