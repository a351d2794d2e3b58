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


package filestore

import (
	"context"
	"fmt"

	"github.com/poiesic/folio/config"
	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/source"
)

// Store persists document files keyed by document id.
// Implementations must be thread-safe and support concurrent access.
type Store interface {
	// AddDocument stores the bytes of f under f.ID, replacing any previous copy.
	AddDocument(ctx context.Context, f *source.SourceFile) error

	// Delete removes the document. Returns core.ErrNotFound if it is absent.
	Delete(ctx context.Context, id string) error

	// GetDocument returns a caller-owned copy of the document as a PDF
	// SourceFile. Returns core.ErrNotFound if it is absent.
	GetDocument(ctx context.Context, id string) (*source.SourceFile, error)

	// Exists reports whether the document is stored.
	Exists(ctx context.Context, id string) (bool, error)
}

// New returns the store selected by cfg.Type. An empty type means no file
// store is configured and returns nil without error.
func New(cfg config.FileStore) (Store, error) {
	switch cfg.Type {
	case "":
		return nil, nil
	case config.FileStoreFilesystem:
		s, err := NewFilesystem(cfg.BasePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.FileStoreS3:
		s, err := NewObjectStore(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.FileStorePostgres:
		return NewPostgres(), nil
	default:
		return nil, fmt.Errorf("%w: file store type %q", core.ErrUnknownBackend, cfg.Type)
	}
}

// previewFile describes a stored document copied to path.
func previewFile(id, path string) *source.SourceFile {
	return &source.SourceFile{
		ID:       id,
		Path:     path,
		MimeType: source.MimePDF,
		FileName: id + ".pdf",
	}
}
