// Package engine wires the chunker, the embedding collaborator and a
// vector store into the ingestion and retrieval pipelines.
package engine

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/papyrusco/tome/pkg/chunker"
	"github.com/papyrusco/tome/pkg/embeddings"
	"github.com/papyrusco/tome/pkg/vector"
)

// Engine coordinates ingestion and retrieval. All collaborators are
// constructed by the caller and passed in explicitly; the engine owns
// no global state. Operations run synchronously end-to-end; callers
// serialize mutating calls (Ingest, Reset).
type Engine struct {
	splitter *chunker.Splitter
	embedder embeddings.Embedder
	store    vector.Store
	logger   *zap.Logger
}

// NewEngine creates an engine over the given collaborators.
func NewEngine(splitter *chunker.Splitter, embedder embeddings.Embedder, store vector.Store, logger *zap.Logger) *Engine {
	return &Engine{
		splitter: splitter,
		embedder: embedder,
		store:    store,
		logger:   logger,
	}
}

// Status values reported by Ingest.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// IngestStats merges chunk statistics with index statistics.
type IngestStats struct {
	chunker.Stats
	VectorStore vector.Stats `json:"vector_store"`
}

// IngestResult reports the outcome of an ingest run.
type IngestResult struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Stats   IngestStats `json:"stats"`
}

// Ingest chunks the file or directory at path, embeds every chunk text
// in emission order, and adds chunks and vectors to the store. A
// directory that yields zero chunks is reported as an error status, not
// a silent empty success. Embedding or store failures are hard errors.
func (e *Engine) Ingest(ctx context.Context, path string) (*IngestResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("inspecting %s: %w", path, err)
	}

	var chunks []chunker.Chunk
	if info.IsDir() {
		chunks, err = e.splitter.ProcessDirectory(path)
	} else {
		chunks, err = e.splitter.ProcessFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("processing %s: %w", path, err)
	}

	if len(chunks) == 0 {
		e.logger.Warn("no documents found to process",
			zap.String("path", path),
		)
		return &IngestResult{
			Status:  StatusError,
			Message: "no documents found to process",
		}, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	// The i-th embedding must pair with the i-th chunk; EmbedBatch
	// preserves input order by contract.
	vectors, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}

	if err := e.store.Add(ctx, chunks, vectors); err != nil {
		return nil, fmt.Errorf("adding chunks to index: %w", err)
	}

	// Stores with explicit persistence (the flat index) are saved
	// here; embedded stores persist transparently.
	if saver, ok := e.store.(vector.Saver); ok {
		if err := saver.Save(); err != nil {
			return nil, fmt.Errorf("saving index: %w", err)
		}
	}

	storeStats, err := e.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading index stats: %w", err)
	}

	e.logger.Info("ingestion complete",
		zap.String("path", path),
		zap.Int("chunks", len(chunks)),
		zap.Int("indexed_records", storeStats.RecordCount),
	)

	return &IngestResult{
		Status: StatusSuccess,
		Stats: IngestStats{
			Stats:       chunker.ComputeStats(chunks),
			VectorStore: storeStats,
		},
	}, nil
}

// SystemStats reports the state of the store and the embedding model.
type SystemStats struct {
	VectorStore    vector.Stats         `json:"vector_store"`
	EmbeddingModel embeddings.ModelInfo `json:"embedding_model"`
}

// Stats reports the current system state.
func (e *Engine) Stats(ctx context.Context) (*SystemStats, error) {
	storeStats, err := e.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading index stats: %w", err)
	}

	return &SystemStats{
		VectorStore:    storeStats,
		EmbeddingModel: e.embedder.ModelInfo(),
	}, nil
}

// Reset clears the vector index.
func (e *Engine) Reset(ctx context.Context) error {
	e.logger.Info("resetting vector index")
	if err := e.store.Reset(ctx); err != nil {
		return fmt.Errorf("resetting index: %w", err)
	}
	return nil
}
