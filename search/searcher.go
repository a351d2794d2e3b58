package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/vectorstore"
)

// Query describes one retrieval request.
type Query struct {
	// Text is the question or keywords to match.
	Text string

	// Bucket restricts results to one bucket. Empty searches all buckets.
	Bucket string

	// IndexName selects the collection. Empty uses the default collection.
	IndexName string

	// DocIDs restricts results to these documents when not empty.
	DocIDs []string

	// Take caps the number of results. Values below 1 use core.DefaultTake.
	Take int
}

// Result is one retrieved chunk.
type Result struct {
	DocID    string
	FileName string
	Content  string
	Score    float32

	// Verbatim is set when Content contains every query keyword.
	Verbatim bool

	Metadata map[string]any
}

// Searcher runs similarity searches against the vector store.
type Searcher struct {
	bindings  *vectorstore.Bindings
	vectorURL string
	logger    *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a searcher over the stores bindings opens at vectorURL.
func NewSearcher(bindings *vectorstore.Bindings, vectorURL string, opts ...Option) (*Searcher, error) {
	if bindings == nil {
		return nil, ErrBindingsRequired
	}
	if vectorURL == "" {
		return nil, fmt.Errorf("%w: vector store url", core.ErrConfigurationMissing)
	}

	s := &Searcher{
		bindings:  bindings,
		vectorURL: vectorURL,
		logger:    slog.Default().With("component", "search"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search returns up to q.Take chunks, most similar first.
func (s *Searcher) Search(ctx context.Context, q Query) ([]Result, error) {
	return s.SearchWithMonitor(ctx, q, nil)
}

// SearchWithMonitor is Search with callbacks at each stage.
func (s *Searcher) SearchWithMonitor(ctx context.Context, q Query, monitor SearchMonitor) ([]Result, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if strings.TrimSpace(q.Text) == "" {
		return nil, ErrQueryRequired
	}
	if q.Take < 1 {
		q.Take = core.DefaultTake
	}
	monitor.Start(q)

	collection := s.bindings.Collection(q.IndexName)
	store, err := s.bindings.Get(ctx, s.vectorURL, collection)
	if err != nil {
		s.logger.Error("error opening vector store", "collection", collection, "err", err)
		return nil, err
	}

	filter := &core.Filter{Bucket: q.Bucket, DocIDs: q.DocIDs}
	docs, err := store.SimilaritySearch(ctx, q.Text, q.Take, filter)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "collection", collection, "err", err)
		return nil, err
	}
	monitor.AfterSimilaritySearch(collection, len(docs))

	keywords := newKeywordMatcher(q.Text)
	results := make([]Result, 0, len(docs))
	for _, d := range docs {
		r := Result{
			DocID:    core.MetadataString(d.Metadata, core.MetadataDocID),
			FileName: core.MetadataString(d.Metadata, core.MetadataFileName),
			Content:  d.PageContent,
			Score:    d.Score,
			Verbatim: keywords.matches(d.PageContent),
			Metadata: d.Metadata,
		}
		if r.Verbatim {
			monitor.VerbatimHit(r)
		}
		results = append(results, r)
	}

	s.logger.Debug("search finished",
		"collection", collection,
		"bucket", q.Bucket,
		"take", q.Take,
		"results", len(results))
	monitor.Finish(results)
	return results, nil
}
