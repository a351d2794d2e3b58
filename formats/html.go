package formats

import (
	"bytes"
	"context"
	"strings"

	"github.com/poiesic/folio/convert"
	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/source"
	"github.com/tmc/langchaingo/schema"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var _ Provider = (*HTML)(nil)

// HTML handles web pages. Chunks are built from the visible text with
// scripts, styles and similar noise removed; the preview shows the raw
// markup as highlighted source.
type HTML struct {
	base
	conv *convert.Converter
}

// NewHTML creates the html provider.
func NewHTML(conv *convert.Converter) *HTML {
	return &HTML{
		base: base{
			name:       "html",
			extensions: []string{".html", ".htm", ".xhtml"},
			defaults:   core.ChunkParams{Size: 500, Overlap: 0},
		},
		conv: conv,
	}
}

func (p *HTML) Capabilities() Capabilities { return defaultCapabilities() }

func (p *HTML) ProcessFile(_ context.Context, f *source.SourceFile, chunkSize, chunkOverlap *int) ([]schema.Document, error) {
	params, err := p.params(chunkSize, chunkOverlap)
	if err != nil {
		return nil, err
	}
	buf, err := f.Buffer()
	if err != nil {
		return nil, err
	}

	title, text, err := visibleText(buf)
	if err != nil {
		return nil, err
	}
	meta := map[string]any{}
	if title != "" {
		meta["title"] = title
	}
	return splitText(characterSplitter(params), text, meta)
}

func (p *HTML) ConvertToPDF(ctx context.Context, f *source.SourceFile) (*source.SourceFile, error) {
	return p.conv.TextToPDF(ctx, f, "html")
}

// noiseElements never contribute visible text.
var noiseElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Template: true,
	atom.Iframe:   true,
	atom.Head:     true,
}

// blockElements end a line of text.
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Hr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Tr: true, atom.Blockquote: true, atom.Pre: true, atom.Table: true,
	atom.Section: true, atom.Article: true, atom.Header: true, atom.Footer: true,
}

// visibleText parses markup and returns the document title and the text
// a reader would see, one block element per line.
func visibleText(buf []byte) (string, string, error) {
	doc, err := html.Parse(bytes.NewReader(buf))
	if err != nil {
		return "", "", err
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && noiseElements[n.DataAtom] {
			return
		}
		if n.Type == html.CommentNode {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.DataAtom] {
			b.WriteByte('\n')
		}
	}
	walk(doc)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return findTitle(doc), strings.Join(lines, "\n"), nil
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title && n.FirstChild != nil {
		return strings.TrimSpace(n.FirstChild.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}
