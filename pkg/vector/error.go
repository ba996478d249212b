package vector

import "errors"

var (
	// ErrEmbedding is returned when turning memory text into a vector fails.
	// Recall treats it as a soft failure and falls back to tag search.
	ErrEmbedding = errors.New("embedding failed")

	// ErrConnection is returned when the vector store cannot be opened or
	// reached.
	ErrConnection = errors.New("vector store connection failed")
)
