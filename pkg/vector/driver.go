// Package vector provides the interface and shared types for vector
// index backends that store chunk embeddings and answer similarity
// queries.
package vector

import (
	"context"

	"github.com/papyrusco/tome/pkg/chunker"
)

// QueryResult represents a search result with a backend-normalized
// relevance score.
type QueryResult struct {
	// ID uniquely identifies the record within its index.
	ID string `json:"id"`

	// Text is the stored chunk text.
	Text string `json:"text"`

	// Metadata is the chunk metadata stored alongside the vector.
	Metadata map[string]any `json:"metadata"`

	// Distance is the backend's raw distance for this result. Distance
	// semantics differ between backends (cosine vs L2); callers must
	// rank by Score only.
	Distance float32 `json:"distance"`

	// Score is monotonically decreasing in dissimilarity
	// (higher = more similar). Scores are rank-comparable within one
	// backend, not across backends.
	Score float32 `json:"score"`
}

// Stats describes the state of an index.
type Stats struct {
	IndexType     string `json:"index_type"`
	RecordCount   int    `json:"record_count"`
	Dimension     int    `json:"embedding_dimension,omitempty"`
	Collection    string `json:"collection,omitempty"`
	PersistTarget string `json:"persist_target,omitempty"`
}

// Store handles storage and retrieval of chunk embeddings.
// A Store is not designed for concurrent mutation; Add and Reset must
// be serialized by the caller.
type Store interface {
	// Add stores chunks with their embeddings. Chunks and embeddings
	// must have equal length and matching order; a length mismatch is
	// a contract error, never silently truncated.
	Add(ctx context.Context, chunks []chunker.Chunk, embeddings [][]float32) error

	// Query finds up to topK records nearest to the given embedding,
	// sorted by descending Score. Filter, when non-nil, restricts
	// results to records whose metadata matches every key equally.
	// An empty index returns an empty result list.
	Query(ctx context.Context, embedding []float32, topK int, filter map[string]any) ([]QueryResult, error)

	// Stats reports the current state of the index.
	Stats(ctx context.Context) (Stats, error)

	// Reset removes all records, returning the index to its freshly
	// created state.
	Reset(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// Saver is implemented by stores that require an explicit save to
// persist their state (the flat index). Embedded stores persist
// transparently and do not implement it.
type Saver interface {
	Save() error
}
