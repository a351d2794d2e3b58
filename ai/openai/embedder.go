package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/folio/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrEmptyEmbedding indicates the service returned fewer vectors than requested.
var ErrEmptyEmbedding = errors.New("embedding service returned no vector")

// Embedder implements ai.Embedder on top of a langchaingo embedder. Single
// texts take the query path; batches take the document path and are split
// into requests of at most the configured batch size.
type Embedder struct {
	inner  embeddings.Embedder
	logger *slog.Logger
}

func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(config.Token()),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	opts := []embeddings.Option{embeddings.WithStripNewLines(true)}
	if config.BatchSize > 0 {
		opts = append(opts, embeddings.WithBatchSize(config.BatchSize))
	}
	inner, err := embeddings.NewEmbedder(client, opts...)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	return &Embedder{
		inner:  inner,
		logger: slog.Default().With("component", "openai-embedder", "model", config.EmbeddingModel),
	}, nil
}

// NewEmbedder returns an embedder for config without a surrounding provider.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText embeds a search query.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	v, err := e.inner.EmbedQuery(ctx, text)
	if err != nil {
		e.logger.Error("query embedding failed", "length", len(text), "err", err)
		return nil, err
	}
	if len(v) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return v, nil
}

// EmbedTexts embeds document chunks, one vector per text in input order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vs, err := e.inner.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("document embedding failed", "count", len(texts), "err", err)
		return nil, err
	}
	if len(vs) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrEmptyEmbedding, len(vs), len(texts))
	}
	e.logger.Debug("embedded documents", "count", len(vs))
	return vs, nil
}
