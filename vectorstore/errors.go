package vectorstore

import "errors"

var (
	// ErrOpenerRequired indicates Bindings was created without an Opener.
	ErrOpenerRequired = errors.New("vector store opener is required")

	// ErrEmbedderRequired indicates a store was created without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")
)
