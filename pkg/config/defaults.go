package config

const (
	// CurrentV is the current config schema version.
	CurrentV = 1

	defaultDataDirName = ".tome"

	defaultChunkSize = 1000
	defaultOverlap   = 200

	defaultVectorProvider = "sqlite"
	defaultCollection     = "documents"
	defaultQdrantPort     = 6334

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "nomic-embed-text"
	defaultEmbeddingDimensions = 768

	defaultTopK = 5
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values. The data dir
// is left empty here; it is resolved against the user's home at load
// time.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Chunking: ChunkingConfig{
			ChunkSize: defaultChunkSize,
			Overlap:   defaultOverlap,
		},
		VectorStore: VectorStoreConfig{
			Provider:   defaultVectorProvider,
			Collection: defaultCollection,
			Host:       "localhost",
			Port:       defaultQdrantPort,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		Query: QueryConfig{
			TopK: defaultTopK,
		},
	}
}
