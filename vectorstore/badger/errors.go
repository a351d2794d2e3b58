package badger

import "errors"

var (
	// ErrStoreClosed indicates that the backing database is closed.
	ErrStoreClosed = errors.New("vector store is closed")

	// ErrSerializationFailed indicates a chunk record could not be encoded or decoded.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrEmbedderRequired indicates a store was created without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrEmbeddingMismatch indicates the embedder returned a different number
	// of vectors than texts it was given.
	ErrEmbeddingMismatch = errors.New("embedder returned wrong number of vectors")
)
