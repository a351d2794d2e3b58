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


package folio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/folio/ai"
	"github.com/poiesic/folio/ai/openai"
	"github.com/poiesic/folio/config"
	"github.com/poiesic/folio/convert"
	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/filestore"
	"github.com/poiesic/folio/formats"
	"github.com/poiesic/folio/ingestion"
	"github.com/poiesic/folio/search"
	"github.com/poiesic/folio/source"
	"github.com/poiesic/folio/vectorstore"
)

// Library wires the ingestion and retrieval components described by a
// config.Config into a single handle.
type Library struct {
	cfg       *config.Config
	provider  ai.AIProvider
	connector *vectorstore.Connector
	bindings  *vectorstore.Bindings
	registry  *formats.Registry
	files     filestore.Store
	pipeline  *ingestion.Pipeline
	searcher  *search.Searcher
	logger    *slog.Logger
}

// Option configures a Library.
type Option func(*options)

type options struct {
	provider      ai.AIProvider
	runner        convert.Runner
	progress      io.Writer
	progressEvery int
}

// WithProvider replaces the OpenAI-compatible provider built from cfg.AI.
// The Library closes it on Close.
func WithProvider(p ai.AIProvider) Option {
	return func(o *options) { o.provider = p }
}

// WithRunner replaces the runner that executes external converters.
func WithRunner(r convert.Runner) Option {
	return func(o *options) { o.runner = r }
}

// WithProgress reports batch ingestion progress to w every interval documents.
func WithProgress(w io.Writer, interval int) Option {
	return func(o *options) {
		o.progress = w
		o.progressEvery = interval
	}
}

// Open validates cfg and builds every component it names.
func Open(cfg *config.Config, opts ...Option) (*Library, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config", core.ErrConfigurationMissing)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := slog.Default().With("component", "folio")
	if cfg.TempRoot != "" {
		source.SetTempRoot(cfg.TempRoot)
	}

	conv, err := newConverter(cfg.Converter, o.runner)
	if err != nil {
		return nil, err
	}
	registry := formats.DefaultRegistry(conv)

	files, err := filestore.New(cfg.FileStore)
	if err != nil {
		return nil, err
	}

	provider := o.provider
	if provider == nil {
		provider, err = openai.NewProvider(&cfg.AI)
		if err != nil {
			return nil, err
		}
	}

	lib := &Library{
		cfg:      cfg,
		provider: provider,
		registry: registry,
		files:    files,
		logger:   logger,
	}

	lib.connector, err = vectorstore.NewConnector(provider.Embedder())
	if err != nil {
		lib.Close()
		return nil, err
	}
	lib.bindings, err = vectorstore.NewBindings(lib.connector.Open, cfg.VectorStore.Collection)
	if err != nil {
		lib.Close()
		return nil, err
	}

	pipelineOpts := []ingestion.Option{ingestion.WithFileStore(files)}
	if cfg.Ingestion.Workers > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithPoolSize(cfg.Ingestion.Workers))
	}
	if o.progress != nil {
		pipelineOpts = append(pipelineOpts, ingestion.WithProgress(o.progress, o.progressEvery))
	}
	lib.pipeline, err = ingestion.NewPipeline(registry, lib.bindings, cfg.VectorStore.URL, pipelineOpts...)
	if err != nil {
		lib.Close()
		return nil, err
	}

	lib.searcher, err = search.NewSearcher(lib.bindings, cfg.VectorStore.URL)
	if err != nil {
		lib.Close()
		return nil, err
	}

	logger.Debug("library opened",
		"file_store", cfg.FileStore.Type,
		"collection", lib.bindings.Collection(""),
		"formats", len(registry.Providers()))
	return lib, nil
}

func newConverter(cfg config.Converter, runner convert.Runner) (*convert.Converter, error) {
	var opts []convert.Option
	if runner != nil {
		opts = append(opts, convert.WithRunner(runner))
	}
	if cfg.UsePandoc {
		opts = append(opts, convert.WithDocumentConverter(convert.NewPandocConverter(cfg.Pandoc, runner)))
	}
	opts = append(opts,
		convert.WithSofficeBinary(cfg.Soffice),
		convert.WithTimeout(cfg.Timeout),
		convert.WithCodeStyle(cfg.CodeStyle),
	)
	return convert.New(opts...)
}

// Close releases the worker pool, store connections and AI provider.
func (l *Library) Close() error {
	var errs []error
	if l.pipeline != nil {
		l.pipeline.Release()
	}
	if l.connector != nil {
		if err := l.connector.Close(); err != nil {
			l.logger.Error("error closing vector stores", "err", err)
			errs = append(errs, err)
		}
	}
	if l.provider != nil {
		if err := l.provider.Close(); err != nil {
			l.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Registry returns the format registry.
func (l *Library) Registry() *formats.Registry {
	return l.registry
}

// Ingest indexes f into bucket. See ingestion.Pipeline.Ingest.
func (l *Library) Ingest(ctx context.Context, f *source.SourceFile, bucket, indexName string, opts ...ingestion.IngestOption) (*ingestion.Result, error) {
	return l.pipeline.Ingest(ctx, f, bucket, indexName, opts...)
}

// IngestBatch indexes jobs concurrently. See ingestion.Pipeline.IngestBatch.
func (l *Library) IngestBatch(ctx context.Context, jobs []ingestion.Job) ingestion.BatchResult {
	return l.pipeline.IngestBatch(ctx, jobs)
}

// Search retrieves the chunks most similar to q.
func (l *Library) Search(ctx context.Context, q search.Query) ([]search.Result, error) {
	return l.searcher.Search(ctx, q)
}

// Searcher returns the underlying searcher, e.g. to serve it over MCP.
func (l *Library) Searcher() *search.Searcher {
	return l.searcher
}

// PreviewPDF returns the stored preview of docID.
func (l *Library) PreviewPDF(ctx context.Context, docID string) ([]byte, error) {
	if l.files == nil {
		return nil, fmt.Errorf("%w: file store", core.ErrConfigurationMissing)
	}
	f, err := l.files.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Delete(); err != nil {
			l.logger.Warn("failed to remove preview copy", "doc_id", docID, "err", err)
		}
	}()
	return f.Buffer()
}

// Delete removes docID from the index and the file store.
func (l *Library) Delete(ctx context.Context, docID, bucket, indexName string) error {
	return l.pipeline.Delete(ctx, docID, bucket, indexName)
}
