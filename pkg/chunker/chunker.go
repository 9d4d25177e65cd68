// Package chunker splits raw document text into overlapping,
// boundary-aware chunks suitable for embedding.
package chunker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/papyrusco/tome/pkg/document"
)

// separators are tried in priority order when snapping a chunk boundary.
// The first separator type with any occurrence inside the window wins,
// at its rightmost occurrence before the tentative end.
var separators = []string{"\n\n", "\n", ". ", "! ", "? "}

// Chunk is a bounded, positionally-tagged substring of a source
// document prepared for embedding. Chunks are immutable once produced;
// their order within a document is significant and must be preserved so
// the i-th chunk pairs with the i-th embedding vector.
type Chunk struct {
	Text     string
	Metadata map[string]any
}

// Splitter splits text into overlapping chunks.
type Splitter struct {
	chunkSize int
	overlap   int
	logger    *zap.Logger
}

// NewSplitter creates a Splitter. Overlap must be smaller than the
// chunk size or splitting could fail to terminate; that is rejected
// here rather than guarded per call.
func NewSplitter(chunkSize, overlap int, logger *zap.Logger) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d", ErrInvalidChunking, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidChunking, overlap, chunkSize)
	}

	return &Splitter{
		chunkSize: chunkSize,
		overlap:   overlap,
		logger:    logger,
	}, nil
}

// Split divides text into chunks of at most the configured chunk size,
// snapping each boundary to the rightmost separator that fits inside
// the window. Whitespace-only pieces are dropped.
func (s *Splitter) Split(text string) []string {
	var chunks []string

	start := 0
	for start < len(text) {
		end := start + s.chunkSize

		if end < len(text) {
			for _, sep := range separators {
				if idx := strings.LastIndex(text[start:end], sep); idx != -1 {
					end = start + idx + len(sep)
					break
				}
			}
		} else {
			end = len(text)
		}

		if chunk := strings.TrimSpace(text[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(text) {
			break
		}

		next := end - s.overlap
		if next <= start {
			// A snapped boundary close to start combined with the
			// overlap would move the cursor backwards; skip the
			// overlap for this step to guarantee forward progress.
			next = end
		}
		start = next
	}

	return chunks
}

// ProcessDocument splits a loaded document and stamps each chunk with
// positional metadata merged over the document's own metadata.
// chunk_index and total_chunks are stamped in a second pass since the
// final count is only known after the full split.
func (s *Splitter) ProcessDocument(doc *document.Document) []Chunk {
	pieces := s.Split(doc.Text)

	chunks := make([]Chunk, len(pieces))
	for i, text := range pieces {
		metadata := make(map[string]any, len(doc.Metadata)+2)
		for k, v := range doc.Metadata {
			metadata[k] = v
		}
		metadata["chunk_index"] = i
		metadata["total_chunks"] = len(pieces)

		chunks[i] = Chunk{
			Text:     text,
			Metadata: metadata,
		}
	}

	s.logger.Debug("document processed",
		zap.Any("source", doc.Metadata["source"]),
		zap.Int("chunks", len(chunks)),
	)

	return chunks
}

// ProcessFile loads and chunks a single file.
func (s *Splitter) ProcessFile(path string) ([]Chunk, error) {
	doc, err := document.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return s.ProcessDocument(doc), nil
}

// ProcessDirectory chunks every supported file in dir, in lexicographic
// filename order so ingestion is deterministic across filesystems. A
// file that fails to load is logged and skipped; the walk continues.
func (s *Splitter) ProcessDirectory(dir string) ([]Chunk, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	supported := make(map[string]bool)
	for _, ext := range document.SupportedExtensions() {
		supported[ext] = true
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if supported[strings.ToLower(filepath.Ext(entry.Name()))] {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	var all []Chunk
	for _, path := range paths {
		chunks, err := s.ProcessFile(path)
		if err != nil {
			s.logger.Warn("skipping document",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		all = append(all, chunks...)
	}

	s.logger.Info("directory processed",
		zap.String("dir", dir),
		zap.Int("files", len(paths)),
		zap.Int("chunks", len(all)),
	)

	return all, nil
}
