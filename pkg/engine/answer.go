package engine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/papyrusco/tome/pkg/vector"
)

const (
	// previewLimit bounds each passage preview in extractive answers.
	previewLimit = 300

	// answerSources caps how many passages an extractive answer cites.
	answerSources = 3

	noResultsMessage = "Sorry, I could not find relevant information about your question in the indexed documents."

	generationStubMessage = "LLM generation is not configured. Disable it to see the retrieved context instead."
)

// Retrieval is the raw outcome of a retrieval-only query.
type Retrieval struct {
	Question   string               `json:"question"`
	Context    string               `json:"context"`
	Documents  []vector.QueryResult `json:"relevant_documents"`
	NumSources int                  `json:"num_sources"`
}

// Answer is the shaped response to a question.
type Answer struct {
	Question string               `json:"question"`
	Answer   string               `json:"answer"`
	Sources  []vector.QueryResult `json:"sources"`
	Context  string               `json:"context"`
}

// Query embeds the question once, retrieves the topK most relevant
// passages and assembles the labeled context string.
func (e *Engine) Query(ctx context.Context, question string, topK int) (*Retrieval, error) {
	if topK <= 0 {
		topK = 5
	}

	e.logger.Debug("query",
		zap.String("question", question),
		zap.Int("top_k", topK),
	)

	embedding, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	documents, err := e.store.Query(ctx, embedding, topK, nil)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	return &Retrieval{
		Question:   question,
		Context:    buildContext(documents),
		Documents:  documents,
		NumSources: len(documents),
	}, nil
}

// AnswerQuestion retrieves context for the question and shapes an
// answer. With useLLM set the generation collaborator would be invoked;
// generation is deliberately unimplemented and returns a fixed message.
func (e *Engine) AnswerQuestion(ctx context.Context, question string, topK int, useLLM bool) (*Answer, error) {
	retrieval, err := e.Query(ctx, question, topK)
	if err != nil {
		return nil, err
	}

	var answer string
	if useLLM {
		answer = generationStubMessage
	} else {
		answer = extractiveAnswer(retrieval.Documents)
	}

	return &Answer{
		Question: question,
		Answer:   answer,
		Sources:  retrieval.Documents,
		Context:  retrieval.Context,
	}, nil
}

// buildContext concatenates the retrieved passages into a labeled
// context block, in rank order.
func buildContext(documents []vector.QueryResult) string {
	parts := make([]string, len(documents))
	for i, doc := range documents {
		filename := "Unknown"
		if name, ok := doc.Metadata["filename"].(string); ok {
			filename = name
		}
		parts[i] = fmt.Sprintf("[Source %d: %s]\n%s", i+1, filename, doc.Text)
	}
	return strings.Join(parts, "\n\n")
}

// extractiveAnswer lists the most relevant passages verbatim, truncated
// to a bounded preview, as the fallback when no generation step is
// configured.
func extractiveAnswer(documents []vector.QueryResult) string {
	if len(documents) == 0 {
		return noResultsMessage
	}

	var b strings.Builder
	b.WriteString("Found the following relevant passages in the indexed documents:\n")

	limit := answerSources
	if len(documents) < limit {
		limit = len(documents)
	}
	for i := 0; i < limit; i++ {
		doc := documents[i]

		filename := "Unknown"
		if name, ok := doc.Metadata["filename"].(string); ok {
			filename = name
		}

		text := doc.Text
		if len(text) > previewLimit {
			text = text[:previewLimit] + "..."
		}

		fmt.Fprintf(&b, "\n%d. From '%s' (relevance: %.2f%%):\n%s\n",
			i+1, filename, doc.Score*100, text)
	}

	return b.String()
}
