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


package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MimePDF is the MIME type of every preview produced by the pipeline.
const MimePDF = "application/pdf"

// SourceFile is a file on disk plus the identity and lifecycle metadata
// the pipeline needs to process it.
//
// The bytes at Path are owned by whoever created the SourceFile until they
// are handed to a file store or released by a temporary-file scope.
type SourceFile struct {
	// ID is a stable opaque identifier. New assigns a random UUID.
	ID string

	// Path locates the bytes on disk. It must exist while the value is live.
	Path string

	MimeType string

	// FileName carries the extension used for provider dispatch.
	FileName string

	// DeleteDir removes the parent directory of Path on Delete.
	DeleteDir bool

	// PreviewPDF memoizes a PDF conversion of this file. It is owned by
	// this SourceFile and disposed before the file itself.
	PreviewPDF *SourceFile
}

// Option configures a SourceFile created by New.
type Option func(*SourceFile)

// WithID sets the file identity instead of generating one.
func WithID(id string) Option {
	return func(f *SourceFile) {
		if id != "" {
			f.ID = id
		}
	}
}

// WithDeleteDir marks the parent directory for removal on Delete.
func WithDeleteDir() Option {
	return func(f *SourceFile) {
		f.DeleteDir = true
	}
}

// New wraps an existing path.
func New(path, mimeType, fileName string, opts ...Option) *SourceFile {
	f := &SourceFile{
		ID:       uuid.NewString(),
		Path:     path,
		MimeType: mimeType,
		FileName: fileName,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Size returns the number of bytes on disk.
func (f *SourceFile) Size() (int64, error) {
	info, err := os.Stat(f.Path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Exists reports whether the backing file is present.
func (f *SourceFile) Exists() bool {
	_, err := os.Stat(f.Path)
	return err == nil
}

// Buffer reads the full contents into memory.
// Only formats whose parsers need in-memory text should call it.
func (f *SourceFile) Buffer() ([]byte, error) {
	return os.ReadFile(f.Path)
}

// Ext returns the file name suffix without the leading dot.
func (f *SourceFile) Ext() string {
	return strings.TrimPrefix(filepath.Ext(f.FileName), ".")
}

// Delete disposes the cached preview, then the backing file, then the
// parent directory when DeleteDir is set. A file that is already gone is
// not an error; the preview and directory steps still run.
func (f *SourceFile) Delete() error {
	var errs []error

	if f.PreviewPDF != nil {
		if err := f.PreviewPDF.Delete(); err != nil {
			errs = append(errs, err)
		}
		f.PreviewPDF = nil
	}

	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, err)
	}

	if f.DeleteDir {
		dir := filepath.Dir(f.Path)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			if err := os.Remove(dir); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}
