// Package recall provides semantic memory search: promoted items are embedded
// and indexed so topic queries can find memories that share meaning rather
// than exact tags.
package recall

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/inwardlabs/psyche/pkg/embeddings"
	"github.com/inwardlabs/psyche/pkg/memory"
	"github.com/inwardlabs/psyche/pkg/vector"
)

// Hit is one semantic search result.
type Hit struct {
	ID    string  `json:"id"`
	Score float32 `json:"score"`
}

// Index embeds memory text and searches it by similarity. Resolution of hit
// ids back to items goes through the long-term store so merged ids still
// land on their survivors.
type Index struct {
	embedder embeddings.Embedder
	store    vector.Driver
	logger   *zap.Logger
}

// NewIndex creates a semantic recall index.
func NewIndex(embedder embeddings.Embedder, store vector.Driver, logger *zap.Logger) *Index {
	return &Index{embedder: embedder, store: store, logger: logger}
}

// Add embeds an item's text and indexes it under the item id.
func (i *Index) Add(ctx context.Context, item memory.Item) error {
	emb, err := i.embedder.Embed(ctx, item.Text)
	if err != nil {
		return fmt.Errorf("embedding item %s: %w", item.ID, err)
	}

	if err := i.store.Add(ctx, []vector.Document{{ID: item.ID, Embedding: emb}}); err != nil {
		return fmt.Errorf("indexing item %s: %w", item.ID, err)
	}

	i.logger.Debug("indexed memory for recall",
		zap.String("item_id", item.ID),
	)
	return nil
}

// Search embeds the query and returns the topK most similar item ids.
func (i *Index) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	emb, err := i.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := i.store.Query(ctx, emb, topK)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	hits := make([]Hit, len(results))
	for n, r := range results {
		hits[n] = Hit{ID: r.ID, Score: r.Score}
	}
	return hits, nil
}

// Remove drops items from the index, used when reconciliation retires ids.
func (i *Index) Remove(ctx context.Context, ids ...string) error {
	return i.store.Delete(ctx, ids)
}

// Close releases the embedder and the vector store.
func (i *Index) Close() error {
	embErr := i.embedder.Close()
	storeErr := i.store.Close()
	if embErr != nil {
		return embErr
	}
	return storeErr
}
