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


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/filestore"
	"github.com/poiesic/folio/formats"
	"github.com/poiesic/folio/source"
	"github.com/poiesic/folio/vectorstore"
	"github.com/tmc/langchaingo/schema"
)

const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 500 * time.Millisecond
)

// Pipeline indexes documents into a vector store and optionally keeps a
// PDF preview of each one in a file store.
type Pipeline struct {
	registry      *formats.Registry
	files         filestore.Store
	bindings      *vectorstore.Bindings
	vectorURL     string
	pool          *ants.Pool
	retryAttempts int
	retryDelay    time.Duration
	progress      io.Writer
	progressEvery int
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets how many documents IngestBatch processes at once.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// WithFileStore enables preview persistence. A nil store disables it.
func WithFileStore(files filestore.Store) Option {
	return func(p *Pipeline) error {
		p.files = files
		return nil
	}
}

// WithRetry sets how often store writes are attempted and the initial
// backoff between attempts.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.retryAttempts = attempts
		p.retryDelay = baseDelay
		return nil
	}
}

// WithProgress reports IngestBatch progress to w every interval documents.
func WithProgress(w io.Writer, interval int) Option {
	return func(p *Pipeline) error {
		p.progress = w
		p.progressEvery = interval
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a pipeline that writes chunks to the stores bindings
// opens at vectorURL.
func NewPipeline(
	registry *formats.Registry,
	bindings *vectorstore.Bindings,
	vectorURL string,
	opts ...Option,
) (*Pipeline, error) {
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	if bindings == nil {
		return nil, ErrBindingsRequired
	}
	if vectorURL == "" {
		return nil, fmt.Errorf("%w: vector store url", core.ErrConfigurationMissing)
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		registry:      registry,
		bindings:      bindings,
		vectorURL:     vectorURL,
		pool:          pool,
		retryAttempts: defaultRetryAttempts,
		retryDelay:    defaultRetryDelay,
		logger:        slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Release stops the worker pool.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Result summarizes one indexed document.
type Result struct {
	DocID string

	// Chunks is the number of chunks written. Zero is valid for documents
	// without extractable text.
	Chunks int

	// Preview reports whether a PDF preview was stored.
	Preview bool
}

type ingestOptions struct {
	chunkSize    *int
	chunkOverlap *int
}

// IngestOption overrides per-document chunking.
type IngestOption func(*ingestOptions)

// WithChunkSize overrides the provider's default chunk size.
func WithChunkSize(size int) IngestOption {
	return func(o *ingestOptions) { o.chunkSize = &size }
}

// WithChunkOverlap overrides the provider's default chunk overlap.
func WithChunkOverlap(overlap int) IngestOption {
	return func(o *ingestOptions) { o.chunkOverlap = &overlap }
}

type chunkDefaults interface {
	Defaults() core.ChunkParams
}

// Ingest indexes f into bucket within the indexName collection, replacing
// whatever was indexed for f.ID before. The file itself is left in place.
func (p *Pipeline) Ingest(ctx context.Context, f *source.SourceFile, bucket, indexName string, opts ...IngestOption) (*Result, error) {
	if f == nil {
		return nil, ErrFileRequired
	}
	var o ingestOptions
	for _, opt := range opts {
		opt(&o)
	}

	provider, err := p.registry.Lookup(f)
	if err != nil {
		return nil, err
	}
	caps := provider.Capabilities()
	if !caps.Enabled {
		return nil, fmt.Errorf("%w: %s", ErrProviderDisabled, provider.Name())
	}

	// Reject bad chunking before paying for a preview conversion.
	if d, ok := provider.(chunkDefaults); ok {
		defs := d.Defaults()
		if _, err := core.ValidateChunking(o.chunkSize, o.chunkOverlap, defs.Size, defs.Overlap); err != nil {
			return nil, err
		}
	}

	withPreview := p.files != nil && caps.Previewable
	if withPreview && f.PreviewPDF == nil {
		pdf, err := provider.ConvertToPDF(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("preview %s: %w", f.FileName, err)
		}
		f.PreviewPDF = pdf
		defer func() {
			if err := pdf.Delete(); err != nil {
				p.logger.Warn("failed to remove preview", "doc_id", f.ID, "err", err)
			}
			f.PreviewPDF = nil
		}()
	}

	docs, err := provider.ProcessFile(ctx, f, o.chunkSize, o.chunkOverlap)
	if err != nil {
		return nil, err
	}
	tag(docs, f, bucket)

	store, err := p.bindings.Get(ctx, p.vectorURL, indexName)
	if err != nil {
		return nil, err
	}
	if err := store.Delete(ctx, f.ID); err != nil {
		return nil, fmt.Errorf("remove previous chunks of %s: %w", f.ID, err)
	}
	if len(docs) > 0 {
		err = RetryWithBackoff(ctx, func() error {
			_, err := store.AddDocuments(ctx, docs)
			return permanentIfDone(err)
		}, p.retryAttempts, p.retryDelay)
		if err != nil {
			return nil, fmt.Errorf("index %s: %w", f.ID, err)
		}
	} else {
		p.logger.Info("document has no extractable text", "doc_id", f.ID, "file", f.FileName)
	}

	res := &Result{DocID: f.ID, Chunks: len(docs)}
	if withPreview {
		preview := &source.SourceFile{
			ID:       f.ID,
			Path:     f.PreviewPDF.Path,
			MimeType: source.MimePDF,
			FileName: f.PreviewPDF.FileName,
		}
		err = RetryWithBackoff(ctx, func() error {
			return permanentIfDone(p.files.AddDocument(ctx, preview))
		}, p.retryAttempts, p.retryDelay)
		if err != nil {
			return nil, fmt.Errorf("store preview of %s: %w", f.ID, err)
		}
		res.Preview = true
	}

	p.logger.Info("ingested document",
		"doc_id", f.ID,
		"file", f.FileName,
		"bucket", bucket,
		"collection", p.bindings.Collection(indexName),
		"chunks", res.Chunks,
		"preview", res.Preview)
	return res, nil
}

// tag stamps every chunk with the owning document so it can be filtered
// and deleted later.
func tag(docs []schema.Document, f *source.SourceFile, bucket string) {
	for i := range docs {
		if docs[i].Metadata == nil {
			docs[i].Metadata = make(map[string]any, 3)
		}
		docs[i].Metadata[core.MetadataDocID] = f.ID
		docs[i].Metadata[core.MetadataBucket] = bucket
		docs[i].Metadata[core.MetadataFileName] = f.FileName
	}
}

// Job is one document of a batch.
type Job struct {
	File         *source.SourceFile
	Bucket       string
	IndexName    string
	ChunkSize    *int
	ChunkOverlap *int
}

func (j Job) id() string {
	if j.File == nil {
		return ""
	}
	return j.File.ID
}

// Options converts the job's chunking overrides to IngestOptions.
func (j Job) Options() []IngestOption {
	var opts []IngestOption
	if j.ChunkSize != nil {
		opts = append(opts, WithChunkSize(*j.ChunkSize))
	}
	if j.ChunkOverlap != nil {
		opts = append(opts, WithChunkOverlap(*j.ChunkOverlap))
	}
	return opts
}

// BatchResult counts the outcome of IngestBatch.
type BatchResult struct {
	Succeeded int
	Failed    int

	// Errors holds the failure of each failed document keyed by doc id.
	Errors map[string]error
}

// IngestBatch ingests jobs concurrently on the worker pool. A failing
// document is logged and counted and never stops the rest.
func (p *Pipeline) IngestBatch(ctx context.Context, jobs []Job) BatchResult {
	res := BatchResult{Errors: make(map[string]error)}
	var tracker *ProgressTracker
	if p.progress != nil {
		tracker = NewProgressTracker(p.progress, len(jobs), p.progressEvery)
		tracker.Start()
		defer tracker.Finish()
	}

	var mu sync.Mutex
	record := func(id string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			res.Failed++
			res.Errors[id] = err
			p.logger.Error("document ingestion failed", "doc_id", id, "err", err)
		} else {
			res.Succeeded++
		}
		if tracker != nil {
			tracker.Done(err != nil)
		}
	}

	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			_, err := p.Ingest(ctx, job.File, job.Bucket, job.IndexName, job.Options()...)
			record(job.id(), err)
		})
		if err != nil {
			wg.Done()
			record(job.id(), err)
		}
	}
	wg.Wait()

	return res
}

// Delete removes a document from the vector store and, when configured,
// its preview from the file store. Chunks are matched by doc_id alone.
func (p *Pipeline) Delete(ctx context.Context, docID, bucket, indexName string) error {
	store, err := p.bindings.Get(ctx, p.vectorURL, indexName)
	if err != nil {
		return err
	}
	var errs []error
	if err := store.Delete(ctx, docID); err != nil {
		errs = append(errs, fmt.Errorf("delete chunks of %s: %w", docID, err))
	}
	if p.files != nil {
		if err := p.files.Delete(ctx, docID); err != nil && !errors.Is(err, core.ErrNotFound) {
			errs = append(errs, fmt.Errorf("delete preview of %s: %w", docID, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	p.logger.Info("deleted document", "doc_id", docID, "bucket", bucket,
		"collection", p.bindings.Collection(indexName))
	return nil
}
