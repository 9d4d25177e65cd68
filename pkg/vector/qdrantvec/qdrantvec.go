// Package qdrantvec provides a Qdrant-backed vector index for
// deployments where the index lives in a remote service rather than an
// embedded store. The collection is created with cosine distance on
// first use.
package qdrantvec

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/papyrusco/tome/pkg/chunker"
	"github.com/papyrusco/tome/pkg/vector"
)

// DefaultCollection is the default Qdrant collection name.
const DefaultCollection = "documents"

// textPayloadKey holds the chunk text inside the point payload; all
// other payload keys are chunk metadata.
const textPayloadKey = "text"

// Index implements vector.Store against a Qdrant server.
type Index struct {
	client     *qdrant.Client
	collection string
	dimension  int
	logger     *zap.Logger
}

// Config holds configuration for the Qdrant index.
type Config struct {
	// Host is the Qdrant gRPC host. Required.
	Host string

	// Port is the Qdrant gRPC port (typically 6334).
	Port int

	// Collection names the point group. Defaults to DefaultCollection.
	Collection string

	// Dimension is the embedding dimension. Required.
	Dimension int
}

// NewIndex connects to Qdrant and ensures the collection exists.
func NewIndex(ctx context.Context, c Config, logger *zap.Logger) (*Index, error) {
	if c.Host == "" {
		return nil, fmt.Errorf("qdrant host is required")
	}
	if c.Dimension <= 0 {
		return nil, fmt.Errorf("qdrant embedding dimension must be positive, got %d", c.Dimension)
	}

	collection := c.Collection
	if collection == "" {
		collection = DefaultCollection
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: c.Host,
		Port: c.Port,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: connecting to qdrant: %v", vector.ErrConnection, err)
	}

	idx := &Index{
		client:     client,
		collection: collection,
		dimension:  c.Dimension,
		logger:     logger,
	}

	if err := idx.ensureCollection(ctx); err != nil {
		client.Close()
		return nil, err
	}

	logger.Info("qdrant index initialized",
		zap.String("host", c.Host),
		zap.String("collection", collection),
		zap.Int("dimensions", c.Dimension),
	)

	return idx, nil
}

func (i *Index) ensureCollection(ctx context.Context) error {
	exists, err := i.client.CollectionExists(ctx, i.collection)
	if err != nil {
		return fmt.Errorf("%w: checking collection %q: %v", vector.ErrConnection, i.collection, err)
	}
	if exists {
		return nil
	}

	err = i.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: i.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(i.dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %q: %w", i.collection, err)
	}
	return nil
}

// Add upserts chunks with their embeddings as new points.
func (i *Index) Add(ctx context.Context, chunks []chunker.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("%w: %d chunks, %d embeddings",
			vector.ErrLengthMismatch, len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for n, chunk := range chunks {
		if len(embeddings[n]) != i.dimension {
			return fmt.Errorf("%w: vector %d has dimension %d, index expects %d",
				vector.ErrDimensionMismatch, n, len(embeddings[n]), i.dimension)
		}

		payload := make(map[string]any, len(chunk.Metadata)+1)
		for k, v := range chunk.Metadata {
			payload[k] = v
		}
		payload[textPayloadKey] = chunk.Text

		points[n] = &qdrant.PointStruct{
			Id:      qdrant.NewID(uuid.NewString()),
			Vectors: qdrant.NewVectors(embeddings[n]...),
			Payload: qdrant.NewValueMap(payload),
		}
	}

	_, err := i.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: i.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	i.logger.Debug("added records to qdrant",
		zap.Int("count", len(points)),
	)

	return nil
}

// Query runs a similarity search. Qdrant reports cosine similarity
// directly, so the score is used as-is and the distance is derived.
func (i *Index) Query(ctx context.Context, embedding []float32, topK int, filter map[string]any) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 5
	}
	if len(embedding) != i.dimension {
		return nil, fmt.Errorf("%w: query vector has dimension %d, index expects %d",
			vector.ErrDimensionMismatch, len(embedding), i.dimension)
	}

	qdrantFilter, err := buildFilter(filter)
	if err != nil {
		return nil, err
	}

	points, err := i.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: i.collection,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         qdrantFilter,
	})
	if err != nil {
		return nil, fmt.Errorf("querying qdrant: %w", err)
	}

	results := make([]vector.QueryResult, 0, len(points))
	for _, point := range points {
		text := ""
		metadata := make(map[string]any, len(point.Payload))
		for key, value := range point.Payload {
			if key == textPayloadKey {
				text, _ = valueToAny(value).(string)
				continue
			}
			metadata[key] = valueToAny(value)
		}

		results = append(results, vector.QueryResult{
			ID:       point.Id.GetUuid(),
			Text:     text,
			Metadata: metadata,
			Distance: 1.0 - point.Score,
			Score:    point.Score,
		})
	}

	i.logger.Debug("queried qdrant",
		zap.Int("results", len(results)),
	)

	return results, nil
}

// Stats reports the exact point count of the collection.
func (i *Index) Stats(ctx context.Context) (vector.Stats, error) {
	count, err := i.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: i.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return vector.Stats{}, fmt.Errorf("counting points: %w", err)
	}

	return vector.Stats{
		IndexType:   "qdrant",
		RecordCount: int(count),
		Dimension:   i.dimension,
		Collection:  i.collection,
	}, nil
}

// Reset deletes and recreates the collection.
func (i *Index) Reset(ctx context.Context) error {
	if err := i.client.DeleteCollection(ctx, i.collection); err != nil {
		return fmt.Errorf("deleting collection %q: %w", i.collection, err)
	}
	if err := i.ensureCollection(ctx); err != nil {
		return err
	}

	i.logger.Info("qdrant index reset",
		zap.String("collection", i.collection),
	)

	return nil
}

// Close releases the gRPC connection.
func (i *Index) Close() error {
	return i.client.Close()
}

func buildFilter(filter map[string]any) (*qdrant.Filter, error) {
	if len(filter) == 0 {
		return nil, nil
	}

	conditions := make([]*qdrant.Condition, 0, len(filter))
	for key, value := range filter {
		switch v := value.(type) {
		case string:
			conditions = append(conditions, qdrant.NewMatch(key, v))
		case int:
			conditions = append(conditions, qdrant.NewMatchInt(key, int64(v)))
		case int64:
			conditions = append(conditions, qdrant.NewMatchInt(key, v))
		case bool:
			conditions = append(conditions, qdrant.NewMatchBool(key, v))
		default:
			return nil, fmt.Errorf("unsupported filter value type %T for key %q", value, key)
		}
	}

	return &qdrant.Filter{Must: conditions}, nil
}

// valueToAny converts a qdrant payload value to its plain Go form.
func valueToAny(v *qdrant.Value) any {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_ListValue:
		items := kind.ListValue.GetValues()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = valueToAny(item)
		}
		return out
	case *qdrant.Value_StructValue:
		fields := kind.StructValue.GetFields()
		out := make(map[string]any, len(fields))
		for k, field := range fields {
			out[k] = valueToAny(field)
		}
		return out
	default:
		return nil
	}
}

var _ vector.Store = (*Index)(nil)
