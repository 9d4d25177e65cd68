// Package vectorutils constructs vector stores from provider names.
package vectorutils

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/papyrusco/tome/pkg/vector"
	"github.com/papyrusco/tome/pkg/vector/flat"
	"github.com/papyrusco/tome/pkg/vector/qdrantvec"
	"github.com/papyrusco/tome/pkg/vector/sqlitevec"
)

// NewStoreOpts selects and configures a vector store backend.
type NewStoreOpts struct {
	// Provider is one of "sqlite", "flat", "qdrant".
	Provider string

	// DBPath is the SQLite database path (sqlite provider).
	DBPath string

	// PersistDir is the flat index persist directory (flat provider).
	PersistDir string

	// Host and Port address the Qdrant server (qdrant provider).
	Host string
	Port int

	// Collection names the logical record group where the backend
	// supports one.
	Collection string

	// Dimension is the embedding dimension, fixed per model.
	Dimension int

	Logger *zap.Logger
}

// NewStore builds the configured vector store.
func NewStore(ctx context.Context, o *NewStoreOpts) (vector.Store, error) {
	switch o.Provider {
	case "sqlite":
		return sqlitevec.NewIndex(sqlitevec.Config{
			DBPath:     o.DBPath,
			Collection: o.Collection,
			Dimension:  o.Dimension,
		}, o.Logger)
	case "flat":
		return flat.NewIndex(flat.Config{
			Dimension:  o.Dimension,
			PersistDir: o.PersistDir,
		}, o.Logger)
	case "qdrant":
		return qdrantvec.NewIndex(ctx, qdrantvec.Config{
			Host:       o.Host,
			Port:       o.Port,
			Collection: o.Collection,
			Dimension:  o.Dimension,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.Provider)
	}
}
