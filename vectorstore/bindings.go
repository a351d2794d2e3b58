package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/folio/core"
)

// Bindings caches one Store per (url, collection) pair so every caller
// asking for the same index shares a single handle.
type Bindings struct {
	open              Opener
	defaultCollection string
	logger            *slog.Logger

	mu     sync.Mutex
	stores map[string]Store
}

// NewBindings creates an empty cache. defaultCollection is used when a
// caller does not name a collection; when empty, core.DefaultCollection is used.
func NewBindings(open Opener, defaultCollection string) (*Bindings, error) {
	if open == nil {
		return nil, ErrOpenerRequired
	}
	if defaultCollection == "" {
		defaultCollection = core.DefaultCollection
	}
	return &Bindings{
		open:              open,
		defaultCollection: defaultCollection,
		logger:            slog.Default().With("component", "vectorstore-bindings"),
		stores:            make(map[string]Store),
	}, nil
}

// Collection resolves the collection a request for name will use.
func (b *Bindings) Collection(name string) string {
	if name == "" {
		return b.defaultCollection
	}
	return name
}

// Get returns the store for url and collection, opening it on first use.
// Concurrent callers for the same pair receive the same instance.
func (b *Bindings) Get(ctx context.Context, url, collection string) (Store, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: vector store url", core.ErrConfigurationMissing)
	}
	collection = b.Collection(collection)
	key := url + ":" + collection

	b.mu.Lock()
	defer b.mu.Unlock()

	if s, ok := b.stores[key]; ok {
		return s, nil
	}
	s, err := b.open(ctx, url, collection)
	if err != nil {
		return nil, err
	}
	b.logger.Debug("opened vector store", "collection", collection)
	b.stores[key] = s
	return s, nil
}

// Len reports how many stores are cached.
func (b *Bindings) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.stores)
}
