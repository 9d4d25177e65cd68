// Package config handles persistent tome configuration backed by a
// config.toml file, environment variables and defaults.
package config

import "path/filepath"

// Config represents the persistent tome configuration stored as
// config.toml in the data directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version     int               `toml:"version" mapstructure:"version"`
	Storage     StorageConfig     `toml:"storage" mapstructure:"storage"`
	Chunking    ChunkingConfig    `toml:"chunking" mapstructure:"chunking"`
	VectorStore VectorStoreConfig `toml:"vector_store" mapstructure:"vector_store"`
	Embedding   EmbeddingConfig   `toml:"embedding" mapstructure:"embedding"`
	Query       QueryConfig       `toml:"query" mapstructure:"query"`
}

// StorageConfig holds where tome keeps its on-disk state.
type StorageConfig struct {
	// DataDir is the root directory for all persisted indexes.
	DataDir string `toml:"data_dir,omitempty" mapstructure:"data_dir"`
}

// ChunkingConfig holds document splitting settings.
type ChunkingConfig struct {
	ChunkSize int `toml:"chunk_size,omitempty" mapstructure:"chunk_size"`
	Overlap   int `toml:"overlap,omitempty" mapstructure:"overlap"`
}

// VectorStoreConfig holds vector store settings.
type VectorStoreConfig struct {
	// Provider is one of "sqlite", "flat", "qdrant".
	Provider string `toml:"provider,omitempty" mapstructure:"provider"`

	// Collection names the logical record group.
	Collection string `toml:"collection,omitempty" mapstructure:"collection"`

	// Host and Port address the Qdrant server for the qdrant provider.
	Host string `toml:"host,omitempty" mapstructure:"host"`
	Port int    `toml:"port,omitempty" mapstructure:"port"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty" mapstructure:"provider"`
	Target     string `toml:"target,omitempty" mapstructure:"target"`
	APIKey     string `toml:"api_key,omitempty" mapstructure:"api_key"`
	Model      string `toml:"model,omitempty" mapstructure:"model"`
	Dimensions int    `toml:"dimensions,omitempty" mapstructure:"dimensions"`
}

// QueryConfig holds retrieval settings.
type QueryConfig struct {
	// TopK is the default number of passages retrieved per question.
	TopK int `toml:"top_k,omitempty" mapstructure:"top_k"`
}

// SQLitePath is the embedded index database file under the data dir.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.Storage.DataDir, "tome.db")
}

// FlatDir is the flat index persist directory under the data dir.
func (c *Config) FlatDir() string {
	return filepath.Join(c.Storage.DataDir, "flat")
}
