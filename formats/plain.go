package formats

import (
	"context"

	"github.com/poiesic/folio/convert"
	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/source"
	"github.com/tmc/langchaingo/schema"
)

var _ Provider = (*Plain)(nil)

// Plain handles unstructured text files.
type Plain struct {
	base
	conv *convert.Converter
}

// NewPlain creates the plain text provider.
func NewPlain(conv *convert.Converter) *Plain {
	return &Plain{
		base: base{
			name:       "plain",
			extensions: []string{".txt"},
			defaults:   core.ChunkParams{Size: 1000, Overlap: 200},
		},
		conv: conv,
	}
}

func (p *Plain) Capabilities() Capabilities { return defaultCapabilities() }

func (p *Plain) ProcessFile(_ context.Context, f *source.SourceFile, chunkSize, chunkOverlap *int) ([]schema.Document, error) {
	params, err := p.params(chunkSize, chunkOverlap)
	if err != nil {
		return nil, err
	}
	buf, err := f.Buffer()
	if err != nil {
		return nil, err
	}
	return splitText(characterSplitter(params), string(buf), nil)
}

func (p *Plain) ConvertToPDF(ctx context.Context, f *source.SourceFile) (*source.SourceFile, error) {
	return p.conv.TextToPDF(ctx, f, "text")
}
