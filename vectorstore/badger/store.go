package badger

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/folio/ai"
	"github.com/poiesic/folio/core"
	"github.com/tmc/langchaingo/schema"
)

// Store is a vector store for one collection inside a Backend. Chunks are
// scored by a brute-force cosine scan, which suits local indexes and tests.
type Store struct {
	backend    *Backend
	collection string
	embedder   ai.Embedder
	logger     *slog.Logger
}

// NewStore creates a store for collection on an open backend. The store
// does not own the backend.
func NewStore(backend *Backend, collection string, embedder ai.Embedder) (*Store, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if collection == "" {
		collection = core.DefaultCollection
	}
	return &Store{
		backend:    backend,
		collection: collection,
		embedder:   embedder,
		logger:     slog.Default().With("component", "badger-vectorstore", "collection", collection),
	}, nil
}

// Collection returns the name of the collection this store reads and writes.
func (s *Store) Collection() string {
	return s.collection
}

// AddDocuments embeds and stores docs, returning their chunk ids in order.
// Ids are content derived, so re-adding an identical chunk overwrites it.
func (s *Store) AddDocuments(ctx context.Context, docs []schema.Document) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.PageContent
	}
	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("%w: %d vectors for %d chunks", ErrEmbeddingMismatch, len(vectors), len(docs))
	}

	ids := make([]string, len(docs))
	err = s.backend.Batch(func(wb *badger.WriteBatch) error {
		if err := wb.Set(makeCollectionKey(s.collection), nil); err != nil {
			return err
		}
		for i, d := range docs {
			docID := core.MetadataString(d.Metadata, core.MetadataDocID)
			ids[i] = core.ChunkID(docID, i, d.PageContent)
			val, err := marshalChunk(chunkRecord{
				ID:       ids[i],
				Content:  d.PageContent,
				Metadata: d.Metadata,
				Vector:   vectors[i],
			})
			if err != nil {
				return err
			}
			if err := wb.Set(makeChunkKey(s.collection, ids[i]), val); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("added chunks", "count", len(ids))
	return ids, nil
}

// SimilaritySearch embeds query and returns up to k chunks that satisfy
// filter, best first. Score holds the cosine similarity.
func (s *Store) SimilaritySearch(ctx context.Context, query string, k int, filter *core.Filter) ([]schema.Document, error) {
	if k <= 0 {
		return nil, nil
	}
	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	var results []schema.Document
	err = s.scan(func(r chunkRecord) error {
		if len(r.Vector) == 0 || !filter.Matches(r.Metadata) {
			return nil
		}
		results = append(results, schema.Document{
			PageContent: r.Content,
			Metadata:    r.Metadata,
			Score:       cosine(vector, r.Vector),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortStableFunc(results, func(a, b schema.Document) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Delete removes every chunk whose doc_id is docID. Deleting from a
// collection that was never written is not an error.
func (s *Store) Delete(ctx context.Context, docID string) error {
	exists, err := s.collectionExists()
	if err != nil {
		return err
	}
	if !exists {
		s.logger.Warn("collection not found, nothing to delete", "doc_id", docID)
		return nil
	}

	var keys [][]byte
	err = s.scan(func(r chunkRecord) error {
		if core.MetadataString(r.Metadata, core.MetadataDocID) == docID {
			keys = append(keys, makeChunkKey(s.collection, r.ID))
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	err = s.backend.Batch(func(wb *badger.WriteBatch) error {
		for _, key := range keys {
			if err := wb.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("deleted chunks", "doc_id", docID, "count", len(keys))
	return nil
}

// GetDocuments returns the chunks with the given ids. Unknown ids are skipped.
func (s *Store) GetDocuments(ctx context.Context, ids []string) ([]schema.Document, error) {
	var docs []schema.Document
	err := s.backend.View(func(tx *badger.Txn) error {
		for _, id := range ids {
			item, err := tx.Get(makeChunkKey(s.collection, id))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				r, err := unmarshalChunk(val)
				if err != nil {
					return err
				}
				docs = append(docs, schema.Document{PageContent: r.Content, Metadata: r.Metadata})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return docs, err
}

// Close is a no-op; the backend belongs to whoever opened it.
func (s *Store) Close() error {
	return nil
}

func (s *Store) collectionExists() (bool, error) {
	var exists bool
	err := s.backend.View(func(tx *badger.Txn) error {
		_, err := tx.Get(makeCollectionKey(s.collection))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		exists = err == nil
		return err
	})
	return exists, err
}

func (s *Store) scan(fn func(r chunkRecord) error) error {
	return s.backend.View(func(tx *badger.Txn) error {
		return scanPrefix(tx, makeChunkPrefix(s.collection), func(_, val []byte) error {
			r, err := unmarshalChunk(val)
			if err != nil {
				return err
			}
			return fn(r)
		})
	})
}

// cosine returns the cosine similarity of a and b over their common length.
func cosine(a, b []float32) float32 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
