// Package sqlitevec provides an embedded, crash-durable vector index
// backed by SQLite with the sqlite-vec extension.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"regexp"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/papyrusco/tome/pkg/chunker"
	"github.com/papyrusco/tome/pkg/vector"
)

const (
	// DefaultCollection is the default logical collection name.
	DefaultCollection = "documents"

	// addBatchSize bounds how many records go into one transaction.
	addBatchSize = 100
)

// collectionPattern restricts collection names to safe SQL identifiers
// since they are interpolated into table names.
var collectionPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Index implements vector.Store on SQLite + sqlite-vec. Records survive
// process restarts transparently; no explicit save is needed.
type Index struct {
	db         *sql.DB
	dbPath     string
	collection string
	dimension  int
	logger     *zap.Logger
}

// Config holds configuration for the sqlite-vec index.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string

	// Collection names the logical record group. Created on first use,
	// reopened as-is afterwards. Defaults to DefaultCollection.
	Collection string

	// Dimension is the embedding dimension. Required.
	Dimension int
}

// NewIndex opens (or creates) a sqlite-vec index. Opening an existing
// collection is idempotent.
func NewIndex(c Config, logger *zap.Logger) (*Index, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	if c.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if c.Dimension <= 0 {
		return nil, fmt.Errorf("sqlite-vec embedding dimension must be positive, got %d", c.Dimension)
	}

	collection := c.Collection
	if collection == "" {
		collection = DefaultCollection
	}
	if !collectionPattern.MatchString(collection) {
		return nil, fmt.Errorf("invalid collection name %q", collection)
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Verify sqlite-vec is loaded
	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite-vec not available: %w", err)
	}

	idx := &Index{
		db:         db,
		dbPath:     c.DBPath,
		collection: collection,
		dimension:  c.Dimension,
		logger:     logger,
	}

	if err := idx.createSchema(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("sqlite-vec index initialized",
		zap.String("db_path", c.DBPath),
		zap.String("collection", collection),
		zap.Int("dimensions", c.Dimension),
		zap.String("vec_version", vecVersion),
	)

	return idx, nil
}

// createSchema creates the record table and the vec0 virtual table for
// the collection if they do not exist yet. vec0 virtual tables use
// integer rowids, so the record table supplies the rowid mapping from
// string record ids.
func (i *Index) createSchema() error {
	createRecords := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s_records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			record_id TEXT NOT NULL UNIQUE,
			text TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}'
		)
	`, i.collection)
	if _, err := i.db.Exec(createRecords); err != nil {
		return fmt.Errorf("creating records table: %w", err)
	}

	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS %s_vec USING vec0(embedding float[%d] distance_metric=cosine)`,
		i.collection, i.dimension,
	)
	if _, err := i.db.Exec(createVec); err != nil {
		return fmt.Errorf("creating vec0 table: %w", err)
	}

	return nil
}

// serializeFloat32 converts a float32 slice to a little-endian byte
// slice suitable for sqlite-vec BLOB format.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Add stores chunks with their embeddings, in fixed-size batches so a
// large ingest does not balloon one transaction. Batch boundaries have
// no externally visible effect on record order.
func (i *Index) Add(ctx context.Context, chunks []chunker.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("%w: %d chunks, %d embeddings",
			vector.ErrLengthMismatch, len(chunks), len(embeddings))
	}

	for start := 0; start < len(chunks); start += addBatchSize {
		end := start + addBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := i.addBatch(ctx, chunks[start:end], embeddings[start:end]); err != nil {
			return err
		}
	}

	i.logger.Debug("added records to sqlite-vec",
		zap.Int("count", len(chunks)),
	)

	return nil
}

func (i *Index) addBatch(ctx context.Context, chunks []chunker.Chunk, embeddings [][]float32) error {
	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	insertRecord := fmt.Sprintf(
		`INSERT INTO %s_records(record_id, text, metadata) VALUES (?, ?, ?)`, i.collection)
	insertVec := fmt.Sprintf(
		`INSERT INTO %s_vec(rowid, embedding) VALUES (?, ?)`, i.collection)

	for n, chunk := range chunks {
		if len(embeddings[n]) != i.dimension {
			return fmt.Errorf("%w: vector %d has dimension %d, index expects %d",
				vector.ErrDimensionMismatch, n, len(embeddings[n]), i.dimension)
		}

		metaJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling metadata: %w", err)
		}

		recordID := uuid.NewString()
		result, err := tx.ExecContext(ctx, insertRecord, recordID, chunk.Text, string(metaJSON))
		if err != nil {
			return fmt.Errorf("inserting record %s: %w", recordID, err)
		}

		rowID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("getting rowid for record %s: %w", recordID, err)
		}

		if _, err := tx.ExecContext(ctx, insertVec, rowID, serializeFloat32(embeddings[n])); err != nil {
			return fmt.Errorf("inserting embedding for record %s: %w", recordID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// Query finds up to topK nearest records by cosine distance, scored as
// 1 - distance. Metadata filters are equality predicates applied to
// the KNN candidates, so a filtered query may return fewer than topK
// results.
func (i *Index) Query(ctx context.Context, embedding []float32, topK int, filter map[string]any) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 5
	}
	if len(embedding) != i.dimension {
		return nil, fmt.Errorf("%w: query vector has dimension %d, index expects %d",
			vector.ErrDimensionMismatch, len(embedding), i.dimension)
	}

	query := fmt.Sprintf(`
		SELECT
			r.record_id,
			r.text,
			r.metadata,
			ve.distance
		FROM %s_vec ve
		INNER JOIN %s_records r ON r.rowid = ve.rowid
		WHERE ve.embedding MATCH ?
			AND ve.k = ?
	`, i.collection, i.collection)
	args := []any{serializeFloat32(embedding), topK}

	for key, value := range filter {
		if !collectionPattern.MatchString(key) {
			return nil, fmt.Errorf("invalid filter key %q", key)
		}
		query += fmt.Sprintf("\t\t\tAND json_extract(r.metadata, '$.%s') = ?\n", key)
		args = append(args, value)
	}
	query += "\t\tORDER BY ve.distance"

	rows, err := i.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	results := []vector.QueryResult{}
	for rows.Next() {
		var recordID, text, metaJSON string
		var distance float64
		if err := rows.Scan(&recordID, &text, &metaJSON, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}

		var metadata map[string]any
		if err := json.Unmarshal([]byte(metaJSON), &metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata for record %s: %w", recordID, err)
		}

		results = append(results, vector.QueryResult{
			ID:       recordID,
			Text:     text,
			Metadata: metadata,
			Distance: float32(distance),
			// Cosine distance lives on a 0..2 scale, so the score can
			// go negative for opposed vectors; ranking is what callers
			// depend on.
			Score: float32(1.0 - distance),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	i.logger.Debug("queried sqlite-vec",
		zap.Int("results", len(results)),
	)

	return results, nil
}

// Stats reports the current state of the collection.
func (i *Index) Stats(ctx context.Context) (vector.Stats, error) {
	var count int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s_records`, i.collection)
	if err := i.db.QueryRowContext(ctx, countQuery).Scan(&count); err != nil {
		return vector.Stats{}, fmt.Errorf("counting records: %w", err)
	}

	return vector.Stats{
		IndexType:     "sqlite-vec",
		RecordCount:   count,
		Dimension:     i.dimension,
		Collection:    i.collection,
		PersistTarget: i.dbPath,
	}, nil
}

// Reset drops and recreates the collection's tables.
func (i *Index) Reset(ctx context.Context) error {
	for _, table := range []string{i.collection + "_vec", i.collection + "_records"} {
		if _, err := i.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("dropping %s: %w", table, err)
		}
	}
	if err := i.createSchema(); err != nil {
		return err
	}

	i.logger.Info("sqlite-vec index reset",
		zap.String("collection", i.collection),
	)

	return nil
}

// Close releases resources held by the index.
func (i *Index) Close() error {
	return i.db.Close()
}

var _ vector.Store = (*Index)(nil)
