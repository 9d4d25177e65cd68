package embeddingutils_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	embeddingutils "github.com/papyrusco/tome/pkg/embeddings/utils"
)

var _ = Describe("NewEmbedder", func() {
	It("builds an ollama embedder with defaults", func() {
		embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
			ProviderType: "ollama",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(embedder.ModelInfo().Provider).To(Equal("ollama"))
		Expect(embedder.Close()).To(Succeed())
	})

	It("builds an openai embedder when an API key is set", func() {
		embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
			ProviderType: "openai",
			APIKey:       "sk-test",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(embedder.ModelInfo().Provider).To(Equal("openai"))
		Expect(embedder.Dimension()).To(Equal(1536))
	})

	It("requires an API key for openai", func() {
		_, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
			ProviderType: "openai",
		})
		Expect(err).To(HaveOccurred())
	})

	It("rejects an unknown provider", func() {
		_, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
			ProviderType: "huggingface",
		})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("unsupported embedding provider"))
	})
})
