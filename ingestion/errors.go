package ingestion

import "errors"

var (
	// ErrRegistryRequired is returned when a format registry is not provided.
	ErrRegistryRequired = errors.New("format registry required")

	// ErrBindingsRequired is returned when vector store bindings are not provided.
	ErrBindingsRequired = errors.New("vector store bindings required")

	// ErrInvalidMaxAttempts is returned when retry attempts is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrFileRequired is returned when Ingest is called without a file.
	ErrFileRequired = errors.New("source file required")

	// ErrProviderDisabled is returned when the matching provider is switched off.
	ErrProviderDisabled = errors.New("format provider disabled")
)
