// Package openai implements pkg/embeddings' Embedder on the OpenAI
// embeddings API.
package openai

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/papyrusco/tome/pkg/embeddings"
	"github.com/papyrusco/tome/pkg/vector"
)

// DefaultEmbeddingModel is the default OpenAI embedding model.
const DefaultEmbeddingModel = "text-embedding-3-small"

// modelDimensions maps known embedding models to their output size.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Embedder wraps the OpenAI embeddings API.
type Embedder struct {
	client    *goopenai.Client
	model     string
	dimension int
}

// EmbedderConfig holds configuration for the OpenAI embedder.
type EmbedderConfig struct {
	// APIKey is the OpenAI API key. Required.
	APIKey string

	// Model is the embedding model. Defaults to DefaultEmbeddingModel.
	Model string

	// Dimension overrides the model's known dimension. Required for
	// models not in the built-in table.
	Dimension int
}

// NewEmbedder creates a new embedder using the OpenAI embeddings API.
func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	dimension := cfg.Dimension
	if dimension == 0 {
		dimension = modelDimensions[model]
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("unknown embedding dimension for model %q, configure it explicitly", model)
	}

	return &Embedder{
		client:    goopenai.NewClient(cfg.APIKey),
		model:     model,
		dimension: dimension,
	}, nil
}

// Embed converts text into a vector embedding.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch converts texts into embeddings in input order. The API
// returns one embedding per input element at the matching index.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Model: goopenai.EmbeddingModel(e.model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: openai request: %v", vector.ErrEmbedding, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: requested %d embeddings, got %d",
			vector.ErrEmbedding, len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", vector.ErrEmbedding, item.Index)
		}
		if len(item.Embedding) != e.dimension {
			return nil, fmt.Errorf("%w: embedding %d has dimension %d, expected %d",
				vector.ErrDimensionMismatch, item.Index, len(item.Embedding), e.dimension)
		}
		vectors[item.Index] = item.Embedding
	}

	return vectors, nil
}

// Dimension returns the model's embedding dimension.
func (e *Embedder) Dimension() int {
	return e.dimension
}

// ModelInfo describes the underlying model.
func (e *Embedder) ModelInfo() embeddings.ModelInfo {
	return embeddings.ModelInfo{
		Provider:  "openai",
		Model:     e.model,
		Dimension: e.dimension,
	}
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	return nil
}

var _ embeddings.Embedder = (*Embedder)(nil)
