// Package setup builds the engine and its collaborators from the
// effective configuration. Shared by every subcommand that runs the
// pipeline locally.
package setup

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/papyrusco/tome/pkg/chunker"
	"github.com/papyrusco/tome/pkg/config"
	embeddingutils "github.com/papyrusco/tome/pkg/embeddings/utils"
	"github.com/papyrusco/tome/pkg/engine"
	vectorutils "github.com/papyrusco/tome/pkg/vector/utils"
)

// Opts carries command-line overrides applied over the loaded config.
type Opts struct {
	// DataDir overrides the data directory (empty = ~/.tome).
	DataDir string

	// StoreProvider overrides vector_store.provider when non-empty.
	StoreProvider string

	// ChunkSize and Overlap override chunking settings when positive.
	ChunkSize int
	Overlap   int
}

// Runtime bundles everything a command needs to run the pipeline.
type Runtime struct {
	Config *config.Config
	Engine *engine.Engine

	closers []func() error
}

// Close releases the runtime's resources in reverse construction order.
func (r *Runtime) Close() error {
	var firstErr error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Build loads configuration and constructs the engine with all its
// collaborators.
func Build(ctx context.Context, opts Opts, logger *zap.Logger) (*Runtime, error) {
	cfger, err := config.NewConfiger(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	cfg, err := cfger.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if opts.StoreProvider != "" {
		cfg.VectorStore.Provider = opts.StoreProvider
	}
	if opts.ChunkSize > 0 {
		cfg.Chunking.ChunkSize = opts.ChunkSize
	}
	if opts.Overlap > 0 {
		cfg.Chunking.Overlap = opts.Overlap
	}

	splitter, err := chunker.NewSplitter(cfg.Chunking.ChunkSize, cfg.Chunking.Overlap, logger)
	if err != nil {
		return nil, fmt.Errorf("configuring chunker: %w", err)
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		APIKey:       cfg.Embedding.APIKey,
		Model:        cfg.Embedding.Model,
		Dimension:    cfg.Embedding.Dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring embedder: %w", err)
	}

	store, err := vectorutils.NewStore(ctx, &vectorutils.NewStoreOpts{
		Provider:   cfg.VectorStore.Provider,
		DBPath:     cfg.SQLitePath(),
		PersistDir: cfg.FlatDir(),
		Host:       cfg.VectorStore.Host,
		Port:       cfg.VectorStore.Port,
		Collection: cfg.VectorStore.Collection,
		Dimension:  embedder.Dimension(),
		Logger:     logger,
	})
	if err != nil {
		embedder.Close()
		return nil, fmt.Errorf("configuring vector store: %w", err)
	}

	return &Runtime{
		Config:  cfg,
		Engine:  engine.NewEngine(splitter, embedder, store, logger),
		closers: []func() error{embedder.Close, store.Close},
	}, nil
}
