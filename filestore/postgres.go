package filestore

import (
	"context"
	"fmt"

	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/source"
)

// Postgres is a placeholder for storing documents in Postgres.
// Every operation fails with core.ErrNotImplemented.
type Postgres struct{}

var _ Store = (*Postgres)(nil)

// NewPostgres returns the placeholder store.
func NewPostgres() *Postgres {
	return &Postgres{}
}

func (*Postgres) AddDocument(context.Context, *source.SourceFile) error {
	return notImplemented("AddDocument")
}

func (*Postgres) Delete(context.Context, string) error {
	return notImplemented("Delete")
}

func (*Postgres) GetDocument(context.Context, string) (*source.SourceFile, error) {
	return nil, notImplemented("GetDocument")
}

func (*Postgres) Exists(context.Context, string) (bool, error) {
	return false, notImplemented("Exists")
}

func notImplemented(op string) error {
	return fmt.Errorf("%w: postgres file store %s", core.ErrNotImplemented, op)
}
