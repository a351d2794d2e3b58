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


package formats

import (
	"context"
	"strings"

	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/source"
	"github.com/tmc/langchaingo/schema"
)

// Provider parses, chunks and previews one family of file formats.
// Implementations are stateless and safe for concurrent use.
type Provider interface {
	// Name identifies the provider, e.g. "markdown".
	Name() string

	// Extensions lists the file name suffixes the provider accepts, with leading dot.
	Extensions() []string

	// Supports reports whether the file name ends with one of Extensions,
	// compared case-insensitively.
	Supports(f *source.SourceFile) bool

	// ProcessFile parses f and splits it into chunks. Nil chunkSize or
	// chunkOverlap select the provider defaults. f is never modified.
	ProcessFile(ctx context.Context, f *source.SourceFile, chunkSize, chunkOverlap *int) ([]schema.Document, error)

	// ConvertToPDF produces a new caller-owned PDF rendering of f.
	ConvertToPDF(ctx context.Context, f *source.SourceFile) (*source.SourceFile, error)

	// Capabilities reports fixed flags consulted by callers scheduling work.
	Capabilities() Capabilities
}

// Capabilities are fixed per provider.
type Capabilities struct {
	// Enabled is false for providers that are registered but switched off.
	Enabled bool

	// Previewable reports whether ConvertToPDF yields a useful preview.
	Previewable bool

	// SeparateProcessForChunking hints that chunking is heavy enough to
	// isolate from the caller.
	SeparateProcessForChunking bool

	// SeparateProcessForConverting hints that conversion is heavy enough to
	// isolate from the caller.
	SeparateProcessForConverting bool
}

func defaultCapabilities() Capabilities {
	return Capabilities{
		Enabled:                      true,
		Previewable:                  true,
		SeparateProcessForChunking:   true,
		SeparateProcessForConverting: true,
	}
}

// base carries the identity and chunking defaults shared by all providers.
type base struct {
	name       string
	extensions []string
	defaults   core.ChunkParams
}

func (b *base) Name() string { return b.name }

func (b *base) Extensions() []string {
	return append([]string(nil), b.extensions...)
}

func (b *base) Supports(f *source.SourceFile) bool {
	return matchExtension(b.extensions, f.FileName)
}

// Defaults returns the chunk size and overlap used when callers pass nil.
func (b *base) Defaults() core.ChunkParams { return b.defaults }

func (b *base) params(size, overlap *int) (core.ChunkParams, error) {
	return core.ValidateChunking(size, overlap, b.defaults.Size, b.defaults.Overlap)
}

func matchExtension(extensions []string, fileName string) bool {
	name := strings.ToLower(fileName)
	for _, ext := range extensions {
		if strings.HasSuffix(name, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
