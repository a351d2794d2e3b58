package convert

import "errors"

var (
	// ErrRunnerRequired is returned when a nil command runner is supplied.
	ErrRunnerRequired = errors.New("command runner is required")

	// ErrDocumentConverterRequired is returned when a nil document converter is supplied.
	ErrDocumentConverterRequired = errors.New("document converter is required")
)
