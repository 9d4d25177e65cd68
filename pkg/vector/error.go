package vector

import "errors"

var (
	// ErrLengthMismatch is returned when Add receives chunk and
	// embedding slices of different lengths.
	ErrLengthMismatch = errors.New("chunks and embeddings length mismatch")

	// ErrDimensionMismatch is returned when a vector's dimension does
	// not match the dimension the index was created with.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCorruptIndex is returned when persisted index files are
	// missing or mutually inconsistent.
	ErrCorruptIndex = errors.New("corrupt index")

	// ErrEmbedding is returned when embedding generation fails.
	ErrEmbedding = errors.New("embedding failed")

	// ErrConnection is returned when a remote vector store connection
	// fails.
	ErrConnection = errors.New("vector store connection failed")
)
