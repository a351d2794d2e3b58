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


package ai

import (
	"context"

	"github.com/tmc/langchaingo/embeddings"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// AIProvider aggregates AI services for convenient initialization.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	Close() error
}

// AsLangchain adapts e to the langchaingo embeddings.Embedder interface.
func AsLangchain(e Embedder) embeddings.Embedder {
	return langchainEmbedder{e}
}

type langchainEmbedder struct {
	e Embedder
}

var _ embeddings.Embedder = langchainEmbedder{}

func (l langchainEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return l.e.EmbedTexts(ctx, texts)
}

func (l langchainEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return l.e.EmbedText(ctx, text)
}
