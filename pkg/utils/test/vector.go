package testutils

import (
	"context"
	"fmt"

	"github.com/papyrusco/tome/pkg/chunker"
	"github.com/papyrusco/tome/pkg/vector"
)

// MockStore is a test vector store that records what it is given.
type MockStore struct {
	// Chunks and Embeddings record every Add, flattened, in order.
	Chunks     []chunker.Chunk
	Embeddings [][]float32

	// Results is returned from Query (truncated to topK).
	Results []vector.QueryResult

	// FailAdd / FailQuery force the corresponding call to error.
	FailAdd   bool
	FailQuery bool

	ResetCalls int
}

func NewMockStore() *MockStore {
	return &MockStore{}
}

func (m *MockStore) Add(_ context.Context, chunks []chunker.Chunk, embeddings [][]float32) error {
	if m.FailAdd {
		return fmt.Errorf("mock add failure")
	}
	if len(chunks) != len(embeddings) {
		return vector.ErrLengthMismatch
	}
	m.Chunks = append(m.Chunks, chunks...)
	m.Embeddings = append(m.Embeddings, embeddings...)
	return nil
}

func (m *MockStore) Query(_ context.Context, _ []float32, topK int, _ map[string]any) ([]vector.QueryResult, error) {
	if m.FailQuery {
		return nil, fmt.Errorf("mock query failure")
	}
	if len(m.Results) <= topK {
		return m.Results, nil
	}
	return m.Results[:topK], nil
}

func (m *MockStore) Stats(_ context.Context) (vector.Stats, error) {
	return vector.Stats{
		IndexType:   "mock",
		RecordCount: len(m.Chunks),
	}, nil
}

func (m *MockStore) Reset(_ context.Context) error {
	m.Chunks = nil
	m.Embeddings = nil
	m.ResetCalls++
	return nil
}

func (m *MockStore) Close() error {
	return nil
}

var _ vector.Store = (*MockStore)(nil)

// SavingStore wraps MockStore with an explicit Save, standing in for
// backends that require save-after-ingest.
type SavingStore struct {
	*MockStore

	SaveCalls int
	FailSave  bool
}

func NewSavingStore() *SavingStore {
	return &SavingStore{MockStore: NewMockStore()}
}

func (s *SavingStore) Save() error {
	if s.FailSave {
		return fmt.Errorf("mock save failure")
	}
	s.SaveCalls++
	return nil
}

var _ vector.Saver = (*SavingStore)(nil)
