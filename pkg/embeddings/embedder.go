// Package embeddings defines the text embedding collaborator contract.
package embeddings

import "context"

// ModelInfo describes the embedding model behind an Embedder.
type ModelInfo struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Dimension int    `json:"embedding_dimension"`
}

// Embedder provides text embedding capabilities. The dimension is fixed
// for the lifetime of the embedder and queryable before any call.
type Embedder interface {
	// Embed converts text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts texts into vector embeddings, one per input,
	// in the same order as the input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the fixed embedding dimension.
	Dimension() int

	// ModelInfo describes the underlying model.
	ModelInfo() ModelInfo

	// Close releases any resources held by the embedder.
	Close() error
}
