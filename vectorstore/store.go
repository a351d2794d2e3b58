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


package vectorstore

import (
	"context"

	"github.com/poiesic/folio/core"
	"github.com/tmc/langchaingo/schema"
)

// Store is a collection of embedded chunks.
// Implementations must be thread-safe and support concurrent access.
type Store interface {
	// AddDocuments embeds and stores chunks, returning their ids in order.
	AddDocuments(ctx context.Context, docs []schema.Document) ([]string, error)

	// Delete removes every chunk whose doc_id metadata equals docID.
	// Deleting from a collection that does not exist yet is not an error.
	Delete(ctx context.Context, docID string) error

	// SimilaritySearch returns up to k chunks matching filter, most similar
	// first, with Score set to the similarity.
	SimilaritySearch(ctx context.Context, query string, k int, filter *core.Filter) ([]schema.Document, error)

	// GetDocuments returns the chunks with the given ids, skipping unknown ones.
	GetDocuments(ctx context.Context, ids []string) ([]schema.Document, error)
}

// Opener opens the store for one collection at a connection URL.
type Opener func(ctx context.Context, url, collection string) (Store, error)
