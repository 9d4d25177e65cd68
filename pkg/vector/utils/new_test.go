package vectorutils_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	vectorutils "github.com/papyrusco/tome/pkg/vector/utils"
)

var _ = Describe("NewStore", func() {
	var (
		ctx    context.Context
		tmpDir string
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		tmpDir, err = os.MkdirTemp("", "tome-vectorutils-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(tmpDir)
		})
	})

	It("builds a flat store", func() {
		store, err := vectorutils.NewStore(ctx, &vectorutils.NewStoreOpts{
			Provider:   "flat",
			PersistDir: filepath.Join(tmpDir, "flat"),
			Dimension:  4,
			Logger:     zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = store.Close()
		})

		stats, err := store.Stats(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.IndexType).To(Equal("flat"))
	})

	It("builds a sqlite store", func() {
		store, err := vectorutils.NewStore(ctx, &vectorutils.NewStoreOpts{
			Provider:  "sqlite",
			DBPath:    filepath.Join(tmpDir, "tome.db"),
			Dimension: 4,
			Logger:    zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = store.Close()
		})

		stats, err := store.Stats(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.IndexType).To(Equal("sqlite-vec"))
	})

	It("rejects an unknown provider", func() {
		_, err := vectorutils.NewStore(ctx, &vectorutils.NewStoreOpts{
			Provider: "pinecone",
		})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("unsupported vector store provider"))
	})
})
