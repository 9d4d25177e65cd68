package testutils

import (
	"context"
	"fmt"

	"github.com/papyrusco/tome/pkg/embeddings"
)

// MockEmbedder is a test embedder that returns predictable embeddings
type MockEmbedder struct {
	// Dim is the reported embedding dimension.
	Dim int

	// Embeddings overrides the derived embedding for specific texts.
	Embeddings map[string][]float32

	// FailOn causes Embed/EmbedBatch to return an error when an input
	// text matches
	FailOn string

	// BatchCalls records every EmbedBatch input, in call order, so
	// tests can assert ordering parity between chunks and vectors.
	BatchCalls [][]string
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Dim:        3,
		Embeddings: make(map[string][]float32),
	}
}

func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.FailOn != "" && text == m.FailOn {
		return nil, fmt.Errorf("mock embedding failure for: %s", text)
	}

	if emb, ok := m.Embeddings[text]; ok {
		return emb, nil
	}

	// Derive a deterministic embedding from the text so distinct texts
	// get distinct vectors.
	emb := make([]float32, m.Dim)
	for i := range emb {
		emb[i] = float32((len(text)+i)%7) / 7.0
	}
	return emb, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	recorded := make([]string, len(texts))
	copy(recorded, texts)
	m.BatchCalls = append(m.BatchCalls, recorded)

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = emb
	}
	return vectors, nil
}

func (m *MockEmbedder) Dimension() int {
	return m.Dim
}

func (m *MockEmbedder) ModelInfo() embeddings.ModelInfo {
	return embeddings.ModelInfo{
		Provider:  "mock",
		Model:     "mock-embedder",
		Dimension: m.Dim,
	}
}

func (m *MockEmbedder) Close() error {
	return nil
}

var _ embeddings.Embedder = (*MockEmbedder)(nil)
