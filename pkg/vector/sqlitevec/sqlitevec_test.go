package sqlitevec_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papyrusco/tome/pkg/chunker"
	"github.com/papyrusco/tome/pkg/vector"
	"github.com/papyrusco/tome/pkg/vector/sqlitevec"
)

var _ = Describe("SQLite-vec index", func() {
	var (
		ctx    context.Context
		dbPath string
		idx    *sqlitevec.Index
	)

	open := func(path string) *sqlitevec.Index {
		i, err := sqlitevec.NewIndex(sqlitevec.Config{
			DBPath:    path,
			Dimension: 4,
		}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		return i
	}

	BeforeEach(func() {
		ctx = context.Background()

		tmpDir, err := os.MkdirTemp("", "tome-sqlitevec-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(tmpDir)
		})

		dbPath = filepath.Join(tmpDir, "tome.db")
		idx = open(dbPath)
		DeferCleanup(func() {
			_ = idx.Close()
		})
	})

	chunkOf := func(text string, meta map[string]any) chunker.Chunk {
		if meta == nil {
			meta = map[string]any{}
		}
		return chunker.Chunk{Text: text, Metadata: meta}
	}

	Describe("NewIndex", func() {
		It("requires a database path", func() {
			_, err := sqlitevec.NewIndex(sqlitevec.Config{Dimension: 4}, zap.NewNop())
			Expect(err).To(HaveOccurred())
		})

		It("rejects a non-positive dimension", func() {
			_, err := sqlitevec.NewIndex(sqlitevec.Config{DBPath: dbPath}, zap.NewNop())
			Expect(err).To(HaveOccurred())
		})

		It("rejects a collection name that is not a safe identifier", func() {
			_, err := sqlitevec.NewIndex(sqlitevec.Config{
				DBPath:     dbPath,
				Dimension:  4,
				Collection: "docs; DROP TABLE",
			}, zap.NewNop())
			Expect(err).To(HaveOccurred())
		})

		It("reopens an existing collection idempotently", func() {
			Expect(idx.Add(ctx, []chunker.Chunk{chunkOf("persisted", nil)}, [][]float32{{1, 0, 0, 0}})).To(Succeed())
			Expect(idx.Close()).To(Succeed())

			reopened := open(dbPath)
			DeferCleanup(func() {
				_ = reopened.Close()
			})

			stats, err := reopened.Stats(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.RecordCount).To(Equal(1))

			results, err := reopened.Query(ctx, []float32{1, 0, 0, 0}, 1, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].Text).To(Equal("persisted"))
		})
	})

	Describe("Add", func() {
		It("rejects mismatched chunk and embedding counts", func() {
			err := idx.Add(ctx, []chunker.Chunk{chunkOf("a", nil)}, nil)
			Expect(err).To(MatchError(vector.ErrLengthMismatch))
		})

		It("rejects vectors of the wrong dimension", func() {
			err := idx.Add(ctx, []chunker.Chunk{chunkOf("a", nil)}, [][]float32{{1, 0}})
			Expect(err).To(MatchError(vector.ErrDimensionMismatch))
		})

		It("stores more records than one transaction batch holds", func() {
			const n = 150
			chunks := make([]chunker.Chunk, n)
			embeddings := make([][]float32, n)
			for i := 0; i < n; i++ {
				chunks[i] = chunkOf(fmt.Sprintf("record %d", i), map[string]any{"chunk_index": i})
				embeddings[i] = []float32{float32(i + 1), 1, 0, 0}
			}

			Expect(idx.Add(ctx, chunks, embeddings)).To(Succeed())

			stats, err := idx.Stats(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.RecordCount).To(Equal(n))
		})
	})

	Describe("Query", func() {
		BeforeEach(func() {
			chunks := []chunker.Chunk{
				chunkOf("east", map[string]any{"filename": "a.txt"}),
				chunkOf("north", map[string]any{"filename": "b.txt"}),
				chunkOf("northeast", map[string]any{"filename": "a.txt"}),
			}
			embeddings := [][]float32{
				{1, 0, 0, 0},
				{0, 1, 0, 0},
				{1, 1, 0, 0},
			}
			Expect(idx.Add(ctx, chunks, embeddings)).To(Succeed())
		})

		It("returns an empty result list on an empty collection", func() {
			Expect(idx.Reset(ctx)).To(Succeed())

			results, err := idx.Query(ctx, []float32{1, 0, 0, 0}, 5, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(BeEmpty())
		})

		It("ranks by cosine distance with score 1 - distance", func() {
			results, err := idx.Query(ctx, []float32{1, 0, 0, 0}, 3, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))

			Expect(results[0].Text).To(Equal("east"))
			Expect(results[0].Distance).To(BeNumerically("~", 0.0, 1e-5))
			Expect(results[0].Score).To(BeNumerically("~", 1.0, 1e-5))

			Expect(results[1].Text).To(Equal("northeast"))
			Expect(results[2].Text).To(Equal("north"))
			for i := range results {
				Expect(results[i].Score).To(BeNumerically("~", 1.0-float64(results[i].Distance), 1e-5))
				if i > 0 {
					Expect(results[i].Score).To(BeNumerically("<=", results[i-1].Score))
				}
			}
		})

		It("truncates to topK", func() {
			results, err := idx.Query(ctx, []float32{1, 0, 0, 0}, 2, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
		})

		It("applies metadata equality filters to the candidates", func() {
			results, err := idx.Query(ctx, []float32{1, 0, 0, 0}, 3, map[string]any{"filename": "a.txt"})
			Expect(err).NotTo(HaveOccurred())

			Expect(results).NotTo(BeEmpty())
			for _, result := range results {
				Expect(result.Metadata["filename"]).To(Equal("a.txt"))
			}
		})

		It("rejects a filter key that is not a safe identifier", func() {
			_, err := idx.Query(ctx, []float32{1, 0, 0, 0}, 3, map[string]any{"bad key": "x"})
			Expect(err).To(HaveOccurred())
		})

		It("rejects a query vector of the wrong dimension", func() {
			_, err := idx.Query(ctx, []float32{1, 0}, 3, nil)
			Expect(err).To(MatchError(vector.ErrDimensionMismatch))
		})

		It("round-trips metadata through the JSON column", func() {
			results, err := idx.Query(ctx, []float32{0, 1, 0, 0}, 1, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].Metadata).To(HaveKeyWithValue("filename", "b.txt"))
			Expect(results[0].ID).NotTo(BeEmpty())
		})
	})

	Describe("Reset", func() {
		It("drops every record but leaves the index usable", func() {
			Expect(idx.Add(ctx, []chunker.Chunk{chunkOf("gone", nil)}, [][]float32{{1, 0, 0, 0}})).To(Succeed())
			Expect(idx.Reset(ctx)).To(Succeed())

			stats, err := idx.Stats(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.RecordCount).To(Equal(0))

			Expect(idx.Add(ctx, []chunker.Chunk{chunkOf("back", nil)}, [][]float32{{0, 1, 0, 0}})).To(Succeed())
			results, err := idx.Query(ctx, []float32{0, 1, 0, 0}, 1, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].Text).To(Equal("back"))
		})
	})

	Describe("Stats", func() {
		It("reports the backend, collection and persist target", func() {
			stats, err := idx.Stats(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.IndexType).To(Equal("sqlite-vec"))
			Expect(stats.Collection).To(Equal(sqlitevec.DefaultCollection))
			Expect(stats.Dimension).To(Equal(4))
			Expect(stats.PersistTarget).To(Equal(dbPath))
		})
	})
})
