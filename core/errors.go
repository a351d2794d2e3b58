// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"errors"
	"fmt"
)

// Document pipeline errors
var (
	// ErrUnsupportedFormat indicates no format provider accepts a file's extension.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrInvalidChunkingParameter indicates a bad chunk size or overlap.
	ErrInvalidChunkingParameter = errors.New("invalid chunking parameter")

	// ErrConversionFailed indicates an external converter exited non-zero
	// or a renderer failed to produce output.
	ErrConversionFailed = errors.New("conversion failed")

	// ErrNotFound indicates a document is absent from a file or vector store.
	ErrNotFound = errors.New("not found")

	// ErrConfigurationMissing indicates a required setting is absent.
	ErrConfigurationMissing = errors.New("configuration missing")

	// ErrNotImplemented indicates a stub backend was invoked.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnknownBackend indicates a store type or URL scheme that has no implementation.
	ErrUnknownBackend = errors.New("unknown backend")
)

// ConversionError describes a failed conversion of a single document.
// It matches ErrConversionFailed with errors.Is.
type ConversionError struct {
	DocumentID string
	Command    string
	ExitCode   int
	Output     string
	Err        error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("%s: document %s", ErrConversionFailed, e.DocumentID)
	if e.Command != "" {
		msg += fmt.Sprintf(" (%s exited %d)", e.Command, e.ExitCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Is(target error) bool {
	return target == ErrConversionFailed
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
