// Package embeddingutils constructs embedders from provider names.
package embeddingutils

import (
	"fmt"

	"github.com/papyrusco/tome/pkg/embeddings"
	"github.com/papyrusco/tome/pkg/embeddings/ollama"
	"github.com/papyrusco/tome/pkg/embeddings/openai"
)

// NewEmbedderOpts selects and configures an embedding provider.
type NewEmbedderOpts struct {
	ProviderType string
	TargetURL    string
	APIKey       string
	Model        string
	Dimension    int
}

// NewEmbedder builds the configured embedder.
func NewEmbedder(o *NewEmbedderOpts) (embeddings.Embedder, error) {
	switch o.ProviderType {
	case "ollama":
		return ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL:   o.TargetURL,
			Model:     o.Model,
			Dimension: o.Dimension,
		})
	case "openai":
		return openai.NewEmbedder(openai.EmbedderConfig{
			APIKey:    o.APIKey,
			Model:     o.Model,
			Dimension: o.Dimension,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", o.ProviderType)
	}
}
