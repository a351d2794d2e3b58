package badger

import (
	"context"
	"errors"
	"sync"

	"github.com/poiesic/folio/ai"
)

// MemoryPath selects an in-memory database instead of a directory.
const MemoryPath = "memory"

// Opener hands out stores backed by shared databases: every collection
// opened on the same path uses one Backend.
type Opener struct {
	embedder ai.Embedder

	mu       sync.Mutex
	backends map[string]*Backend
}

// NewOpener creates an opener whose stores embed with embedder.
func NewOpener(embedder ai.Embedder) *Opener {
	return &Opener{
		embedder: embedder,
		backends: make(map[string]*Backend),
	}
}

// Open returns a store for collection in the database at path. The path
// MemoryPath opens an in-memory database.
func (o *Opener) Open(_ context.Context, path, collection string) (*Store, error) {
	backend, err := o.backend(path)
	if err != nil {
		return nil, err
	}
	return NewStore(backend, collection, o.embedder)
}

func (o *Opener) backend(path string) (*Backend, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if b, ok := o.backends[path]; ok && !b.IsClosed() {
		return b, nil
	}
	b, err := OpenBackend(path, path == MemoryPath)
	if err != nil {
		return nil, err
	}
	o.backends[path] = b
	return b, nil
}

// Close closes every database the opener has opened.
func (o *Opener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var errs []error
	for path, b := range o.backends {
		if !b.IsClosed() {
			errs = append(errs, b.Close())
		}
		delete(o.backends, path)
	}
	return errors.Join(errs...)
}
