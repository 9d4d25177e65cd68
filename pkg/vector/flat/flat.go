// Package flat provides an in-memory exact-search vector index with
// explicit save/load persistence.
package flat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/papyrusco/tome/pkg/chunker"
	"github.com/papyrusco/tome/pkg/vector"
)

const (
	indexFile   = "index.bin"
	recordsFile = "records.gob"
)

// record is the arena entry holding one vector together with its text
// and metadata. Keeping all three in a single record removes the
// row-desynchronization hazard of parallel side tables; the record's
// position in the arena is its identity.
type record struct {
	embedding []float32
	text      string
	metadata  map[string]any
}

// Index is an exhaustive L2-distance index over raw vectors. It is
// bound to one embedding dimension for its lifetime and supports only
// append and full reset; positional ids are never reused.
//
// Index has no internal locking: Add and Reset must be serialized by
// the caller. Concurrent queries against an index that is not being
// mutated are safe.
type Index struct {
	dimension  int
	persistDir string
	records    []record
	logger     *zap.Logger
}

// Config holds configuration for the flat index.
type Config struct {
	// Dimension is the embedding dimension every stored vector must
	// match. Required.
	Dimension int

	// PersistDir is the directory holding the two persistence files.
	PersistDir string
}

// NewIndex creates a flat index. If a previously saved index exists
// under the persist directory it is loaded; a partially present pair of
// persistence files is a corruption error, not a fresh start.
func NewIndex(c Config, logger *zap.Logger) (*Index, error) {
	if c.Dimension <= 0 {
		return nil, fmt.Errorf("flat index dimension must be positive, got %d", c.Dimension)
	}
	if c.PersistDir == "" {
		return nil, fmt.Errorf("flat index persist directory is required")
	}

	if err := os.MkdirAll(c.PersistDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating persist directory: %w", err)
	}

	idx := &Index{
		dimension:  c.Dimension,
		persistDir: c.PersistDir,
		logger:     logger,
	}

	indexPath := filepath.Join(c.PersistDir, indexFile)
	recordsPath := filepath.Join(c.PersistDir, recordsFile)
	indexExists := fileExists(indexPath)
	recordsExists := fileExists(recordsPath)

	switch {
	case indexExists && recordsExists:
		if err := idx.Load(); err != nil {
			return nil, err
		}
		logger.Info("flat index loaded",
			zap.String("persist_dir", c.PersistDir),
			zap.Int("records", len(idx.records)),
		)
	case indexExists != recordsExists:
		return nil, fmt.Errorf("%w: persist directory %s holds only one of %s, %s",
			vector.ErrCorruptIndex, c.PersistDir, indexFile, recordsFile)
	default:
		logger.Info("flat index created",
			zap.String("persist_dir", c.PersistDir),
			zap.Int("dimensions", c.Dimension),
		)
	}

	return idx, nil
}

// Add appends chunks and their embeddings to the arena. The records
// are built and validated before any of them is committed, so a
// failing input leaves the index unchanged.
func (i *Index) Add(ctx context.Context, chunks []chunker.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("%w: %d chunks, %d embeddings",
			vector.ErrLengthMismatch, len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return nil
	}

	staged := make([]record, len(chunks))
	for n, chunk := range chunks {
		if len(embeddings[n]) != i.dimension {
			return fmt.Errorf("%w: vector %d has dimension %d, index expects %d",
				vector.ErrDimensionMismatch, n, len(embeddings[n]), i.dimension)
		}
		emb := make([]float32, i.dimension)
		copy(emb, embeddings[n])
		staged[n] = record{
			embedding: emb,
			text:      chunk.Text,
			metadata:  chunk.Metadata,
		}
	}

	i.records = append(i.records, staged...)

	i.logger.Debug("added records to flat index",
		zap.Int("count", len(staged)),
		zap.Int("total", len(i.records)),
	)

	return nil
}

// Query scans the whole arena and returns the topK nearest records by
// squared L2 distance, scored as 1/(1+distance). An empty index yields
// an empty result list.
func (i *Index) Query(ctx context.Context, embedding []float32, topK int, filter map[string]any) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 5
	}
	if len(i.records) == 0 {
		return []vector.QueryResult{}, nil
	}
	if len(embedding) != i.dimension {
		return nil, fmt.Errorf("%w: query vector has dimension %d, index expects %d",
			vector.ErrDimensionMismatch, len(embedding), i.dimension)
	}

	results := make([]vector.QueryResult, 0, len(i.records))
	for row, rec := range i.records {
		if !matchesFilter(rec.metadata, filter) {
			continue
		}

		distance := l2Squared(embedding, rec.embedding)
		results = append(results, vector.QueryResult{
			ID:       fmt.Sprintf("doc_%d", row),
			Text:     rec.text,
			Metadata: rec.metadata,
			Distance: distance,
			Score:    1.0 / (1.0 + distance),
		})
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}

	i.logger.Debug("queried flat index",
		zap.Int("results", len(results)),
	)

	return results, nil
}

// Stats reports the current state of the index.
func (i *Index) Stats(ctx context.Context) (vector.Stats, error) {
	return vector.Stats{
		IndexType:     "flat",
		RecordCount:   len(i.records),
		Dimension:     i.dimension,
		PersistTarget: i.persistDir,
	}, nil
}

// Reset discards all records. The persisted files, if any, are removed
// so a later open does not resurrect the old contents.
func (i *Index) Reset(ctx context.Context) error {
	i.records = nil

	for _, name := range []string{indexFile, recordsFile} {
		path := filepath.Join(i.persistDir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}

	i.logger.Info("flat index reset")
	return nil
}

// Close releases resources held by the index.
func (i *Index) Close() error {
	return nil
}

func l2Squared(a, b []float32) float32 {
	var sum float32
	for n := range a {
		d := a[n] - b[n]
		sum += d * d
	}
	return sum
}

func matchesFilter(metadata, filter map[string]any) bool {
	for key, want := range filter {
		if metadata[key] != want {
			return false
		}
	}
	return true
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Ensure Index implements vector.Store and vector.Saver.
var (
	_ vector.Store = (*Index)(nil)
	_ vector.Saver = (*Index)(nil)
)
