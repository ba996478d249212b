// Package ollama embeds memory text through a local Ollama instance. The
// vectors feed the semantic recall index; the same model must be used for
// indexing and querying or distances stop meaning anything.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/inwardlabs/psyche/pkg/embeddings"
	"github.com/inwardlabs/psyche/pkg/vector"
)

const (
	// DefaultEmbeddingModel balances quality and footprint for short memory
	// snippets.
	DefaultEmbeddingModel = "nomic-embed-text"

	// DefaultBaseURL is where a locally running Ollama listens.
	DefaultBaseURL = "http://localhost:11434"

	// Embedding a single memory snippet is fast, but the first call may pull
	// the model into memory.
	requestTimeout = 120 * time.Second
)

// Embedder turns memory text into vectors via Ollama's /api/embed endpoint.
type Embedder struct {
	baseURL string
	model   string
	client  *http.Client
}

// EmbedderConfig selects the Ollama instance and embedding model. Zero values
// fall back to the defaults above.
type EmbedderConfig struct {
	// BaseURL of the Ollama API.
	BaseURL string

	// Model used for both indexing promoted memories and querying.
	Model string
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewEmbedder creates an Ollama-backed embedder.
func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	return &Embedder{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: requestTimeout},
	}, nil
}

// Embed converts one memory text into a vector. Failures wrap
// vector.ErrEmbedding so recall can degrade to tag search instead of failing
// the turn.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: e.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", vector.ErrEmbedding, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", vector.ErrEmbedding, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", vector.ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: ollama returned status %d: %s", vector.ErrEmbedding, resp.StatusCode, string(detail))
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", vector.ErrEmbedding, err)
	}

	if len(parsed.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", vector.ErrEmbedding)
	}

	return parsed.Embeddings[0], nil
}

// Close is a no-op; the HTTP client holds no resources worth releasing.
func (e *Embedder) Close() error {
	return nil
}

var _ embeddings.Embedder = (*Embedder)(nil)
