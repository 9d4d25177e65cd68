// Package ollama implements pkg/embeddings' Embedder client for
// Ollama's embedding APIs.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/papyrusco/tome/pkg/embeddings"
	"github.com/papyrusco/tome/pkg/vector"
)

const (
	// DefaultEmbeddingModel is the default model used for embeddings.
	DefaultEmbeddingModel = "nomic-embed-text"

	// DefaultBaseURL is the default Ollama API URL.
	DefaultBaseURL = "http://localhost:11434"

	// DefaultDimension matches DefaultEmbeddingModel's output size.
	DefaultDimension = 768
)

// Embedder wraps Ollama's embedding API.
type Embedder struct {
	baseURL    string
	model      string
	dimension  int
	httpClient *http.Client
}

// EmbedderConfig holds configuration for the Ollama embedder.
type EmbedderConfig struct {
	// BaseURL is the Ollama API URL (e.g., "http://localhost:11434").
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the embedding model to use (e.g., "nomic-embed-text",
	// "embeddinggemma"). Defaults to DefaultEmbeddingModel if empty.
	Model string

	// Dimension is the model's embedding dimension. Responses with a
	// different dimension are rejected. Defaults to DefaultDimension.
	Dimension int
}

// embedRequest is the request body for Ollama's embedding API. Input
// accepts either a single string or a list of strings.
type embedRequest struct {
	Model string `json:"model"`
	Input any    `json:"input"`
}

// embedResponse is the response from Ollama's embedding API.
type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewEmbedder creates a new embedder using Ollama's embedding API.
func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	dimension := cfg.Dimension
	if dimension == 0 {
		dimension = DefaultDimension
	}
	if dimension < 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", dimension)
	}

	return &Embedder{
		baseURL:   baseURL,
		model:     model,
		dimension: dimension,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// Embed converts text into a vector embedding.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch converts texts into embeddings in input order. Ollama's
// embed endpoint accepts a list input and returns one embedding per
// element in the same order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vectors, err := e.embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: requested %d embeddings, got %d",
			vector.ErrEmbedding, len(texts), len(vectors))
	}
	return vectors, nil
}

func (e *Embedder) embed(ctx context.Context, input any) ([][]float32, error) {
	reqBody := embedRequest{
		Model: e.model,
		Input: input,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", vector.ErrEmbedding, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/api/embed", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", vector.ErrEmbedding, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", vector.ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: ollama returned status %d: %s", vector.ErrEmbedding, resp.StatusCode, string(body))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", vector.ErrEmbedding, err)
	}

	if len(embedResp.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", vector.ErrEmbedding)
	}
	for n, emb := range embedResp.Embeddings {
		if len(emb) != e.dimension {
			return nil, fmt.Errorf("%w: embedding %d has dimension %d, expected %d",
				vector.ErrDimensionMismatch, n, len(emb), e.dimension)
		}
	}

	return embedResp.Embeddings, nil
}

// Dimension returns the configured embedding dimension.
func (e *Embedder) Dimension() int {
	return e.dimension
}

// ModelInfo describes the underlying model.
func (e *Embedder) ModelInfo() embeddings.ModelInfo {
	return embeddings.ModelInfo{
		Provider:  "ollama",
		Model:     e.model,
		Dimension: e.dimension,
	}
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

// Ensure Embedder implements embeddings.Embedder
var _ embeddings.Embedder = (*Embedder)(nil)
