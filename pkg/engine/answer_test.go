package engine_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papyrusco/tome/pkg/chunker"
	"github.com/papyrusco/tome/pkg/engine"
	testutils "github.com/papyrusco/tome/pkg/utils/test"
	"github.com/papyrusco/tome/pkg/vector"
)

var _ = Describe("Question answering", func() {
	var (
		ctx      context.Context
		embedder *testutils.MockEmbedder
		store    *testutils.MockStore
		eng      *engine.Engine
	)

	BeforeEach(func() {
		ctx = context.Background()
		embedder = testutils.NewMockEmbedder()
		store = testutils.NewMockStore()

		splitter, err := chunker.NewSplitter(1000, 200, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		eng = engine.NewEngine(splitter, embedder, store, zap.NewNop())
	})

	result := func(text, filename string, score float32) vector.QueryResult {
		return vector.QueryResult{
			ID:       "doc_" + filename,
			Text:     text,
			Metadata: map[string]any{"filename": filename},
			Score:    score,
		}
	}

	Describe("Query", func() {
		It("labels each retrieved passage with its rank and source", func() {
			store.Results = []vector.QueryResult{
				result("first passage", "a.txt", 0.9),
				result("second passage", "b.txt", 0.7),
			}

			retrieval, err := eng.Query(ctx, "what happened", 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieval.Question).To(Equal("what happened"))
			Expect(retrieval.NumSources).To(Equal(2))
			Expect(retrieval.Context).To(Equal(
				"[Source 1: a.txt]\nfirst passage\n\n[Source 2: b.txt]\nsecond passage"))
		})

		It("labels a passage without filename metadata as Unknown", func() {
			store.Results = []vector.QueryResult{
				{ID: "doc_0", Text: "orphan passage", Metadata: map[string]any{}, Score: 0.5},
			}

			retrieval, err := eng.Query(ctx, "anything", 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieval.Context).To(Equal("[Source 1: Unknown]\norphan passage"))
		})

		It("defaults topK when given a non-positive value", func() {
			for i := 0; i < 8; i++ {
				store.Results = append(store.Results, result("p", "a.txt", 0.5))
			}

			retrieval, err := eng.Query(ctx, "anything", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(retrieval.NumSources).To(Equal(5))
		})

		It("propagates retrieval failures", func() {
			store.FailQuery = true
			_, err := eng.Query(ctx, "anything", 5)
			Expect(err).To(HaveOccurred())
		})

		It("propagates question embedding failures", func() {
			embedder.FailOn = "poison question"
			_, err := eng.Query(ctx, "poison question", 5)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("AnswerQuestion", func() {
		It("apologizes when nothing relevant is indexed", func() {
			answer, err := eng.AnswerQuestion(ctx, "anything", 5, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(answer.Answer).To(ContainSubstring("could not find relevant information"))
			Expect(answer.Sources).To(BeEmpty())
		})

		It("lists the top passages with their relevance percentages", func() {
			store.Results = []vector.QueryResult{
				result("first passage", "a.txt", 0.9),
				result("second passage", "b.txt", 0.75),
			}

			answer, err := eng.AnswerQuestion(ctx, "what happened", 5, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(answer.Answer).To(ContainSubstring("1. From 'a.txt' (relevance: 90.00%):"))
			Expect(answer.Answer).To(ContainSubstring("first passage"))
			Expect(answer.Answer).To(ContainSubstring("2. From 'b.txt' (relevance: 75.00%):"))
			Expect(answer.Sources).To(HaveLen(2))
		})

		It("cites at most three passages but keeps all sources", func() {
			for i := 0; i < 5; i++ {
				store.Results = append(store.Results, result("passage", "a.txt", 0.5))
			}

			answer, err := eng.AnswerQuestion(ctx, "anything", 5, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(answer.Answer).To(ContainSubstring("3. From"))
			Expect(answer.Answer).NotTo(ContainSubstring("4. From"))
			Expect(answer.Sources).To(HaveLen(5))
		})

		It("truncates long passages to a bounded preview", func() {
			store.Results = []vector.QueryResult{
				result(strings.Repeat("x", 400), "a.txt", 0.8),
			}

			answer, err := eng.AnswerQuestion(ctx, "anything", 5, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(answer.Answer).To(ContainSubstring(strings.Repeat("x", 300) + "..."))
			Expect(answer.Answer).NotTo(ContainSubstring(strings.Repeat("x", 301)))
		})

		It("returns the generation stub when LLM answering is requested", func() {
			store.Results = []vector.QueryResult{
				result("first passage", "a.txt", 0.9),
			}

			answer, err := eng.AnswerQuestion(ctx, "what happened", 5, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(answer.Answer).To(ContainSubstring("LLM generation is not configured"))
			Expect(answer.Sources).To(HaveLen(1))
			Expect(answer.Context).To(ContainSubstring("[Source 1: a.txt]"))
		})
	})
})
