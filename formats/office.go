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


package formats

import (
	"context"
	"log/slog"

	"github.com/poiesic/folio/convert"
	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/source"
	"github.com/tmc/langchaingo/schema"
)

var _ Provider = (*Office)(nil)

// Office handles word processor, spreadsheet and presentation documents.
// They are never parsed directly: ProcessFile converts to PDF and
// delegates chunking to the pdf provider.
type Office struct {
	base
	conv   *convert.Converter
	pdf    *PDF
	logger *slog.Logger
}

func newOffice(name string, extensions []string, conv *convert.Converter, pdf *PDF) *Office {
	return &Office{
		base: base{
			name:       name,
			extensions: extensions,
			defaults:   core.ChunkParams{Size: 1000, Overlap: 200},
		},
		conv:   conv,
		pdf:    pdf,
		logger: slog.Default().With("component", "office-provider", "provider", name),
	}
}

// NewOffice creates a generic office provider for arbitrary extensions.
func NewOffice(extensions []string, conv *convert.Converter, pdf *PDF) *Office {
	return newOffice("generic_office", extensions, conv, pdf)
}

// NewMSWord creates the provider for Word documents.
func NewMSWord(conv *convert.Converter, pdf *PDF) *Office {
	return newOffice("ms_word", []string{".docx", ".doc"}, conv, pdf)
}

// NewMSExcel creates the provider for Excel workbooks.
func NewMSExcel(conv *convert.Converter, pdf *PDF) *Office {
	return newOffice("ms_excel", []string{".xlsx", ".xls"}, conv, pdf)
}

// NewMSPowerPoint creates the provider for PowerPoint presentations.
func NewMSPowerPoint(conv *convert.Converter, pdf *PDF) *Office {
	return newOffice("ms_ppt", []string{".pptx", ".ppt"}, conv, pdf)
}

// NewLibreOffice creates the provider for OpenDocument files.
func NewLibreOffice(conv *convert.Converter, pdf *PDF) *Office {
	return newOffice("libreoffice", []string{".odt", ".ods", ".odp"}, conv, pdf)
}

func (p *Office) Capabilities() Capabilities {
	c := defaultCapabilities()
	c.SeparateProcessForChunking = p.pdf.Capabilities().SeparateProcessForChunking
	// The office suite already runs as its own process.
	c.SeparateProcessForConverting = false
	return c
}

// ProcessFile chunks the PDF rendering of f. A preview already cached on
// f is reused; otherwise a conversion is made and discarded afterwards.
func (p *Office) ProcessFile(ctx context.Context, f *source.SourceFile, chunkSize, chunkOverlap *int) ([]schema.Document, error) {
	params, err := p.params(chunkSize, chunkOverlap)
	if err != nil {
		return nil, err
	}

	pdf := f.PreviewPDF
	if pdf == nil {
		pdf, err = p.conv.OfficeToPDF(ctx, f)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := pdf.Delete(); err != nil {
				p.logger.Warn("failed to remove intermediate pdf", "doc_id", f.ID, "err", err)
			}
		}()
	}

	return p.pdf.ProcessFile(ctx, pdf, &params.Size, &params.Overlap)
}

// ConvertToPDF returns a copy of the preview cached on f when there is one,
// so the office suite runs at most once per ingest. The copy belongs to
// the caller and the cache is left in place.
func (p *Office) ConvertToPDF(ctx context.Context, f *source.SourceFile) (*source.SourceFile, error) {
	if cached := f.PreviewPDF; cached != nil && cached.Exists() {
		out, err := p.pdf.ConvertToPDF(ctx, cached)
		if err != nil {
			return nil, err
		}
		out.ID, out.FileName = f.ID, f.FileName
		return out, nil
	}
	return p.conv.OfficeToPDF(ctx, f)
}
