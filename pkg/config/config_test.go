package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papyrusco/tome/pkg/config"
)

var _ = Describe("Configer", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "tome-config-test-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(tmpDir)
		})
	})

	It("creates the data directory if it does not exist", func() {
		dataDir := filepath.Join(tmpDir, "nested", "data")

		configer, err := config.NewConfiger(dataDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(configer.DataDir()).To(Equal(dataDir))
		Expect(dataDir).To(BeADirectory())
	})

	It("loads defaults when no config file exists", func() {
		configer, err := config.NewConfiger(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := configer.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Version).To(Equal(config.CurrentV))
		Expect(cfg.Storage.DataDir).To(Equal(tmpDir))
		Expect(cfg.Chunking.ChunkSize).To(Equal(1000))
		Expect(cfg.Chunking.Overlap).To(Equal(200))
		Expect(cfg.VectorStore.Provider).To(Equal("sqlite"))
		Expect(cfg.VectorStore.Collection).To(Equal("documents"))
		Expect(cfg.Embedding.Provider).To(Equal("ollama"))
		Expect(cfg.Embedding.Model).To(Equal("nomic-embed-text"))
		Expect(cfg.Embedding.Dimensions).To(Equal(768))
		Expect(cfg.Query.TopK).To(Equal(5))
	})

	It("reads overrides from config.toml in the data directory", func() {
		content := `
[chunking]
chunk_size = 500
overlap = 50

[vector_store]
provider = "flat"

[query]
top_k = 10
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0o644)).To(Succeed())

		configer, err := config.NewConfiger(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := configer.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Chunking.ChunkSize).To(Equal(500))
		Expect(cfg.Chunking.Overlap).To(Equal(50))
		Expect(cfg.VectorStore.Provider).To(Equal("flat"))
		Expect(cfg.Query.TopK).To(Equal(10))

		// Untouched keys keep their defaults.
		Expect(cfg.Embedding.Model).To(Equal("nomic-embed-text"))
	})

	It("lets environment variables override the config file", func() {
		content := `
[vector_store]
provider = "flat"
`
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0o644)).To(Succeed())
		Expect(os.Setenv("TOME_VECTOR_STORE_PROVIDER", "qdrant")).To(Succeed())
		DeferCleanup(func() {
			_ = os.Unsetenv("TOME_VECTOR_STORE_PROVIDER")
		})

		configer, err := config.NewConfiger(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := configer.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.VectorStore.Provider).To(Equal("qdrant"))
	})

	It("rejects a malformed config file", func() {
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("chunking = [[["), 0o644)).To(Succeed())

		_, err := config.NewConfiger(tmpDir)
		Expect(err).To(HaveOccurred())
	})

	It("derives store paths from the data directory", func() {
		configer, err := config.NewConfiger(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := configer.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.SQLitePath()).To(Equal(filepath.Join(tmpDir, "tome.db")))
		Expect(cfg.FlatDir()).To(Equal(filepath.Join(tmpDir, "flat")))
	})
})

var _ = Describe("NewDefaultConfig", func() {
	It("leaves the data directory unresolved", func() {
		Expect(config.NewDefaultConfig().Storage.DataDir).To(BeEmpty())
	})
})
