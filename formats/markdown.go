package formats

import (
	"context"
	"strings"

	"github.com/poiesic/folio/convert"
	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/source"
	"github.com/tmc/langchaingo/schema"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var _ Provider = (*Markdown)(nil)

// Markdown handles markdown documents. Leading frontmatter is merged into
// the metadata of every chunk and excluded from chunk text and preview.
type Markdown struct {
	base
	conv *convert.Converter
}

// NewMarkdown creates the markdown provider.
func NewMarkdown(conv *convert.Converter) *Markdown {
	return &Markdown{
		base: base{
			name:       "markdown",
			extensions: []string{".md", ".markdown"},
			defaults:   core.ChunkParams{Size: 500, Overlap: 0},
		},
		conv: conv,
	}
}

func (p *Markdown) Capabilities() Capabilities { return defaultCapabilities() }

func (p *Markdown) ProcessFile(_ context.Context, f *source.SourceFile, chunkSize, chunkOverlap *int) ([]schema.Document, error) {
	params, err := p.params(chunkSize, chunkOverlap)
	if err != nil {
		return nil, err
	}
	buf, err := f.Buffer()
	if err != nil {
		return nil, err
	}

	meta, body := ExtractFrontmatter(string(buf))
	return splitText(markdownSplitter(params), inlineHTMLBlocks(body), meta)
}

func (p *Markdown) ConvertToPDF(ctx context.Context, f *source.SourceFile) (*source.SourceFile, error) {
	buf, err := f.Buffer()
	if err != nil {
		return nil, err
	}
	_, body := ExtractFrontmatter(string(buf))
	return p.conv.MarkdownToPDF(ctx, f.ID, f.FileName, []byte(body))
}

// inlineHTMLBlocks replaces each top-level raw HTML block with its visible
// text. The markdown splitter skips HTML tokens entirely, so without this
// their content never reaches a chunk.
func inlineHTMLBlocks(body string) string {
	src := []byte(body)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var b strings.Builder
	last := 0
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		hb, ok := n.(*ast.HTMLBlock)
		if !ok || hb.Lines().Len() == 0 {
			continue
		}
		lines := hb.Lines()
		start, end := lines.At(0).Start, lines.At(lines.Len()-1).Stop
		if hb.HasClosure() {
			end = hb.ClosureLine.Stop
		}
		if start < last || end > len(src) {
			continue
		}
		_, visible, err := visibleText(src[start:end])
		if err != nil {
			continue
		}
		b.Write(src[last:start])
		if visible != "" {
			b.WriteString(visible)
			b.WriteByte('\n')
		}
		last = end
	}
	if last == 0 {
		return body
	}
	b.Write(src[last:])
	return b.String()
}
