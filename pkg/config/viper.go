package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Configer loads tome configuration from a data directory.
type Configer struct {
	v       *viper.Viper
	dataDir string
}

// NewConfiger resolves the data directory (defaulting to ~/.tome) and
// prepares a viper instance over it.
func NewConfiger(dataDir string) (*Configer, error) {
	resolved, err := resolveDataDir(dataDir)
	if err != nil {
		return nil, err
	}

	v, err := initViper(resolved)
	if err != nil {
		return nil, err
	}

	return &Configer{v: v, dataDir: resolved}, nil
}

// LoadConfig materializes the effective configuration.
//
// Config precedence (highest to lowest):
//  1. CLI flags (bound by the commands onto the returned Config)
//  2. Environment variables (TOME_VECTOR_STORE_PROVIDER, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func (c *Configer) LoadConfig() (*Config, error) {
	cfg := &Config{
		Version: c.v.GetInt("version"),
		Storage: StorageConfig{
			DataDir: c.dataDir,
		},
		Chunking: ChunkingConfig{
			ChunkSize: c.v.GetInt("chunking.chunk_size"),
			Overlap:   c.v.GetInt("chunking.overlap"),
		},
		VectorStore: VectorStoreConfig{
			Provider:   c.v.GetString("vector_store.provider"),
			Collection: c.v.GetString("vector_store.collection"),
			Host:       c.v.GetString("vector_store.host"),
			Port:       c.v.GetInt("vector_store.port"),
		},
		Embedding: EmbeddingConfig{
			Provider:   c.v.GetString("embedding.provider"),
			Target:     c.v.GetString("embedding.target"),
			APIKey:     c.v.GetString("embedding.api_key"),
			Model:      c.v.GetString("embedding.model"),
			Dimensions: c.v.GetInt("embedding.dimensions"),
		},
		Query: QueryConfig{
			TopK: c.v.GetInt("query.top_k"),
		},
	}

	return cfg, nil
}

// DataDir returns the resolved data directory.
func (c *Configer) DataDir() string {
	return c.dataDir
}

// initViper creates and returns a configured *viper.Viper. It sets
// defaults from NewDefaultConfig(), reads the config.toml file (if
// present in the data directory), and binds environment variables with
// the TOME_ prefix.
func initViper(dataDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery in the data directory.
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dataDir)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: TOME_VECTOR_STORE_PROVIDER,
	// TOME_EMBEDDING_MODEL, etc.
	v.SetEnvPrefix("TOME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Chunking
	v.SetDefault("chunking.chunk_size", d.Chunking.ChunkSize)
	v.SetDefault("chunking.overlap", d.Chunking.Overlap)

	// Vector store
	v.SetDefault("vector_store.provider", d.VectorStore.Provider)
	v.SetDefault("vector_store.collection", d.VectorStore.Collection)
	v.SetDefault("vector_store.host", d.VectorStore.Host)
	v.SetDefault("vector_store.port", d.VectorStore.Port)

	// Embedding
	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.target", d.Embedding.Target)
	v.SetDefault("embedding.api_key", d.Embedding.APIKey)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)

	// Query
	v.SetDefault("query.top_k", d.Query.TopK)
}

// resolveDataDir expands the data directory, defaulting to ~/.tome,
// and creates it if missing.
func resolveDataDir(dataDir string) (string, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		dataDir = filepath.Join(home, defaultDataDirName)
	}

	if strings.HasPrefix(dataDir, "~"+string(os.PathSeparator)) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}

	return dataDir, nil
}
