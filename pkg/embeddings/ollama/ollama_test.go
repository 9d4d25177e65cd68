package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papyrusco/tome/pkg/embeddings/ollama"
	"github.com/papyrusco/tome/pkg/vector"
)

var _ = Describe("Ollama embedder", func() {
	var (
		ctx      context.Context
		server   *httptest.Server
		requests []map[string]any
		respond  func(w http.ResponseWriter, inputs []string)
	)

	BeforeEach(func() {
		ctx = context.Background()
		requests = nil

		// Default handler echoes one 3-dim vector per input.
		respond = func(w http.ResponseWriter, inputs []string) {
			embeddings := make([][]float32, len(inputs))
			for i := range inputs {
				embeddings[i] = []float32{float32(i), 1, 2}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": embeddings})
		}

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/api/embed"))
			Expect(r.Method).To(Equal(http.MethodPost))

			var body map[string]any
			Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
			requests = append(requests, body)

			var inputs []string
			switch input := body["input"].(type) {
			case string:
				inputs = []string{input}
			case []any:
				for _, item := range input {
					inputs = append(inputs, item.(string))
				}
			}
			respond(w, inputs)
		}))
		DeferCleanup(server.Close)
	})

	newEmbedder := func(dimension int) *ollama.Embedder {
		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL:   server.URL,
			Model:     "test-model",
			Dimension: dimension,
		})
		Expect(err).NotTo(HaveOccurred())
		return e
	}

	It("applies defaults for model, URL and dimension", func() {
		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{})
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Dimension()).To(Equal(ollama.DefaultDimension))

		info := e.ModelInfo()
		Expect(info.Provider).To(Equal("ollama"))
		Expect(info.Model).To(Equal(ollama.DefaultEmbeddingModel))
	})

	It("embeds a single text", func() {
		e := newEmbedder(3)

		emb, err := e.Embed(ctx, "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(emb).To(Equal([]float32{0, 1, 2}))

		Expect(requests).To(HaveLen(1))
		Expect(requests[0]["model"]).To(Equal("test-model"))
		Expect(requests[0]["input"]).To(Equal("hello"))
	})

	It("embeds a batch in input order with a single request", func() {
		e := newEmbedder(3)

		vectors, err := e.EmbedBatch(ctx, []string{"one", "two", "three"})
		Expect(err).NotTo(HaveOccurred())
		Expect(vectors).To(HaveLen(3))
		Expect(vectors[0]).To(Equal([]float32{0, 1, 2}))
		Expect(vectors[2]).To(Equal([]float32{2, 1, 2}))

		Expect(requests).To(HaveLen(1))
		Expect(requests[0]["input"]).To(Equal([]any{"one", "two", "three"}))
	})

	It("returns an empty batch without calling the API", func() {
		e := newEmbedder(3)

		vectors, err := e.EmbedBatch(ctx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(vectors).To(BeEmpty())
		Expect(requests).To(BeEmpty())
	})

	It("rejects embeddings of an unexpected dimension", func() {
		e := newEmbedder(8)

		_, err := e.Embed(ctx, "hello")
		Expect(err).To(MatchError(vector.ErrDimensionMismatch))
	})

	It("rejects a response with the wrong embedding count", func() {
		respond = func(w http.ResponseWriter, _ []string) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"embeddings": [][]float32{{0, 1, 2}},
			})
		}
		e := newEmbedder(3)

		_, err := e.EmbedBatch(ctx, []string{"one", "two"})
		Expect(err).To(MatchError(vector.ErrEmbedding))
	})

	It("surfaces non-200 responses as embedding errors", func() {
		respond = func(w http.ResponseWriter, _ []string) {
			http.Error(w, "model not found", http.StatusNotFound)
		}
		e := newEmbedder(3)

		_, err := e.Embed(ctx, "hello")
		Expect(err).To(MatchError(vector.ErrEmbedding))
		Expect(err.Error()).To(ContainSubstring("404"))
	})
})
