package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/source"
)

// Filesystem keeps documents as files in one directory, named by id.
type Filesystem struct {
	basePath string
	logger   *slog.Logger
}

var _ Store = (*Filesystem)(nil)

// NewFilesystem creates the store, creating basePath if needed.
func NewFilesystem(basePath string) (*Filesystem, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: filesystem base path (FILESTORE_FILESYSTEM_BASEPATH)", core.ErrConfigurationMissing)
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, err
	}
	return &Filesystem{
		basePath: basePath,
		logger:   slog.Default().With("component", "filesystem-filestore"),
	}, nil
}

// ErrInvalidDocumentID is returned when an id names no file, such as "",
// "." or "..".
var ErrInvalidDocumentID = errors.New("invalid document id")

// path maps an id to its file. Only the base name of id is used, so ids
// cannot address files outside basePath.
func (s *Filesystem) path(id string) (string, error) {
	name := filepath.Base(id)
	switch name {
	case ".", "..", string(filepath.Separator):
		return "", fmt.Errorf("%w: %q", ErrInvalidDocumentID, id)
	}
	return filepath.Join(s.basePath, name), nil
}

// lookup is path for reads. An id that cannot name a file was never stored.
func (s *Filesystem) lookup(id string) (string, error) {
	p, err := s.path(id)
	if err != nil {
		return "", fmt.Errorf("%w: document %s: %w", core.ErrNotFound, id, err)
	}
	return p, nil
}

func (s *Filesystem) AddDocument(_ context.Context, f *source.SourceFile) error {
	dst, err := s.path(f.ID)
	if err != nil {
		return err
	}
	if err := copyFile(f.Path, dst); err != nil {
		return err
	}
	s.logger.Debug("stored document", "doc_id", f.ID)
	return nil
}

func (s *Filesystem) Delete(_ context.Context, id string) error {
	p, err := s.lookup(id)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: document %s", core.ErrNotFound, id)
	}
	return err
}

func (s *Filesystem) GetDocument(_ context.Context, id string) (*source.SourceFile, error) {
	src, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: document %s", core.ErrNotFound, id)
	}
	dst, err := source.NewFilePath("", "pdf")
	if err != nil {
		return nil, err
	}
	if err := copyFile(src, dst); err != nil {
		os.Remove(dst)
		return nil, err
	}
	return previewFile(id, dst), nil
}

func (s *Filesystem) Exists(_ context.Context, id string) (bool, error) {
	p, err := s.path(id)
	if err != nil {
		return false, nil
	}
	_, err = os.Stat(p)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// copyFile writes src to dst through a temporary name so readers never
// see a partial file.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".part-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
