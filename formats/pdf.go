package formats

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/source"
	"github.com/tmc/langchaingo/schema"
)

var _ Provider = (*PDF)(nil)

// PDF handles PDF documents. It is the terminal format: office documents
// are chunked by converting them to PDF and delegating here.
type PDF struct {
	base
}

// NewPDF creates the pdf provider.
func NewPDF() *PDF {
	return &PDF{
		base: base{
			name:       "pdf",
			extensions: []string{".pdf"},
			defaults:   core.ChunkParams{Size: 1000, Overlap: 200},
		},
	}
}

func (p *PDF) Capabilities() Capabilities {
	c := defaultCapabilities()
	c.SeparateProcessForConverting = false
	return c
}

// ProcessFile extracts text page by page; each chunk records its page number.
// Pages that fail to parse are skipped.
func (p *PDF) ProcessFile(_ context.Context, f *source.SourceFile, chunkSize, chunkOverlap *int) ([]schema.Document, error) {
	params, err := p.params(chunkSize, chunkOverlap)
	if err != nil {
		return nil, err
	}

	pages, err := pdfPages(f.Path)
	if err != nil {
		return nil, err
	}

	elements := make([]schema.Document, 0, len(pages))
	for i, text := range pages {
		if strings.TrimSpace(text) == "" {
			continue
		}
		elements = append(elements, schema.Document{
			PageContent: text,
			Metadata:    map[string]any{core.MetadataPage: i + 1},
		})
	}
	return splitDocuments(characterSplitter(params), elements)
}

// ConvertToPDF returns a caller-owned copy of f.
func (p *PDF) ConvertToPDF(_ context.Context, f *source.SourceFile) (*source.SourceFile, error) {
	in, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	path, err := source.NewFilePath(uuid.NewString(), "pdf")
	if err != nil {
		return nil, err
	}
	out, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(path)
		return nil, err
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return nil, err
	}

	return &source.SourceFile{ID: f.ID, Path: path, MimeType: source.MimePDF, FileName: f.FileName}, nil
}

// pdfPages returns the plain text of each page, indexed from zero.
func pdfPages(path string) ([]string, error) {
	file, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer file.Close()

	numPages := r.NumPage()
	pages := make([]string, numPages)
	for i := 1; i <= numPages; i++ {
		pages[i-1] = pageText(r, i)
	}
	return pages, nil
}

// pageText returns "" for pages the parser cannot handle, including ones
// that make it panic.
func pageText(r *pdf.Reader, i int) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	page := r.Page(i)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}
