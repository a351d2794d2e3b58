package convert

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const (
	bodyFont       = "Helvetica"
	codeFont       = "Courier"
	bodySize       = 11.0
	codeSize       = 9.0
	lineHeight     = 5.5
	codeLineHeight = 4.5
	tableRowHeight = 6.0
	pageMargin     = 20.0
	indentStep     = 6.0
)

var headingSizes = [6]float64{20, 17, 15, 13, 12, 11}

// Renderer lays out markdown as PDF in-process. GFM tables and fenced code
// blocks are supported; code is syntax highlighted.
type Renderer struct {
	md    goldmark.Markdown
	style *chroma.Style
}

// NewRenderer returns a renderer using the named chroma style for code
// blocks. Unknown or empty style names fall back to "github".
func NewRenderer(styleName string) *Renderer {
	if styleName == "" {
		styleName = "github"
	}
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	return &Renderer{
		md:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
		style: style,
	}
}

// RenderMarkdown writes a PDF rendering of src to w.
func (r *Renderer) RenderMarkdown(src []byte, w io.Writer) error {
	doc := r.md.Parser().Parse(text.NewReader(src))
	l := r.newLayout(src)
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		l.block(n)
	}
	return l.finish(w)
}

// RenderPlain writes a PDF rendering of s to w without interpreting any markup.
func (r *Renderer) RenderPlain(s string, w io.Writer) error {
	l := r.newLayout(nil)
	l.pdf.SetFont(bodyFont, "", bodySize)
	l.pdf.Write(lineHeight, l.tr(expandTabs(s)))
	return l.finish(w)
}

// Fence wraps s in a fenced code block tagged with lang.
// The fence is made longer than any backtick run inside s.
func Fence(lang, s string) string {
	fence := "```"
	for strings.Contains(s, fence) {
		fence += "`"
	}
	return fence + lang + "\n" + s + "\n" + fence + "\n"
}

type runStyle struct {
	bold, italic, underline bool
}

func (s runStyle) String() string {
	var b strings.Builder
	if s.bold {
		b.WriteByte('B')
	}
	if s.italic {
		b.WriteByte('I')
	}
	if s.underline {
		b.WriteByte('U')
	}
	return b.String()
}

type layout struct {
	pdf    *fpdf.Fpdf
	src    []byte
	tr     func(string) string
	style  *chroma.Style
	indent float64
}

func (r *Renderer) newLayout(src []byte) *layout {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()
	return &layout{
		pdf:   pdf,
		src:   src,
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
		style: r.style,
	}
}

func (l *layout) finish(w io.Writer) error {
	if err := l.pdf.Error(); err != nil {
		return err
	}
	return l.pdf.Output(w)
}

func (l *layout) setIndent(indent float64) {
	l.indent = indent
	l.pdf.SetLeftMargin(pageMargin + indent)
	l.pdf.SetX(pageMargin + indent)
}

func (l *layout) contentWidth() float64 {
	w, _ := l.pdf.GetPageSize()
	return w - 2*pageMargin - l.indent
}

func (l *layout) block(n ast.Node) {
	switch n := n.(type) {
	case *ast.Heading:
		level := min(max(n.Level, 1), 6)
		size := headingSizes[level-1]
		l.pdf.Ln(2)
		l.inline(n, runStyle{bold: true}, size)
		l.pdf.Ln(size*0.5 + 1)
	case *ast.Paragraph, *ast.TextBlock:
		l.inline(n, runStyle{}, bodySize)
		l.pdf.Ln(lineHeight + 1)
	case *ast.FencedCodeBlock:
		l.code(string(n.Language(l.src)), l.lines(n))
	case *ast.CodeBlock:
		l.code("", l.lines(n))
	case *ast.HTMLBlock:
		l.code("html", l.lines(n))
	case *ast.List:
		l.list(n)
	case *ast.Blockquote:
		prev := l.indent
		l.setIndent(prev + indentStep)
		l.pdf.SetTextColor(90, 90, 90)
		l.children(n)
		l.pdf.SetTextColor(0, 0, 0)
		l.setIndent(prev)
	case *ast.ThematicBreak:
		y := l.pdf.GetY() + 2
		w, _ := l.pdf.GetPageSize()
		l.pdf.Line(pageMargin+l.indent, y, w-pageMargin, y)
		l.pdf.Ln(5)
	case *east.Table:
		l.table(n)
	default:
		l.children(n)
	}
}

func (l *layout) children(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		l.block(c)
	}
}

func (l *layout) list(n *ast.List) {
	prev := l.indent
	i := 0
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "-"
		if n.IsOrdered() {
			marker = fmt.Sprintf("%d.", n.Start+i)
		}
		l.setIndent(prev)
		l.pdf.SetFont(bodyFont, "", bodySize)
		l.pdf.Write(lineHeight, marker+" ")
		l.indent = prev + indentStep
		l.pdf.SetLeftMargin(pageMargin + l.indent)
		l.children(item)
		i++
	}
	l.setIndent(prev)
}

func (l *layout) inline(n ast.Node, st runStyle, size float64) {
	h := size * 0.5
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			l.write(st, size, string(c.Segment.Value(l.src)))
			if c.HardLineBreak() {
				l.pdf.Ln(h)
			} else if c.SoftLineBreak() {
				l.write(st, size, " ")
			}
		case *ast.String:
			l.write(st, size, string(c.Value))
		case *ast.CodeSpan:
			l.pdf.SetFont(codeFont, "", size-1)
			l.pdf.Write(h, l.tr(l.plainText(c)))
		case *ast.Emphasis:
			next := st
			if c.Level >= 2 {
				next.bold = true
			} else {
				next.italic = true
			}
			l.inline(c, next, size)
		case *ast.Link:
			next := st
			next.underline = true
			l.pdf.SetTextColor(0, 0, 200)
			l.inline(c, next, size)
			l.pdf.SetTextColor(0, 0, 0)
		case *ast.AutoLink:
			next := st
			next.underline = true
			l.pdf.SetTextColor(0, 0, 200)
			l.write(next, size, string(c.URL(l.src)))
			l.pdf.SetTextColor(0, 0, 0)
		case *ast.RawHTML:
			for i := 0; i < c.Segments.Len(); i++ {
				seg := c.Segments.At(i)
				l.write(st, size, string(seg.Value(l.src)))
			}
		default:
			l.inline(c, st, size)
		}
	}
}

func (l *layout) write(st runStyle, size float64, s string) {
	l.pdf.SetFont(bodyFont, st.String(), size)
	l.pdf.Write(size*0.5, l.tr(s))
}

func (l *layout) code(lang, src string) {
	src = expandTabs(strings.TrimRight(src, "\n"))

	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	l.pdf.Ln(1)
	it, err := lexer.Tokenise(nil, src)
	if err != nil {
		l.pdf.SetFont(codeFont, "", codeSize)
		l.pdf.Write(codeLineHeight, l.tr(src))
	} else {
		for _, tok := range it.Tokens() {
			entry := l.style.Get(tok.Type)
			if entry.Colour.IsSet() {
				l.pdf.SetTextColor(int(entry.Colour.Red()), int(entry.Colour.Green()), int(entry.Colour.Blue()))
			} else {
				l.pdf.SetTextColor(0, 0, 0)
			}
			fontStyle := ""
			if entry.Bold == chroma.Yes {
				fontStyle = "B"
			}
			l.pdf.SetFont(codeFont, fontStyle, codeSize)
			l.pdf.Write(codeLineHeight, l.tr(tok.Value))
		}
	}
	l.pdf.SetTextColor(0, 0, 0)
	l.pdf.Ln(codeLineHeight + 2)
}

func (l *layout) table(t *east.Table) {
	var rows [][]string
	var header []bool
	cols := 0
	for r := t.FirstChild(); r != nil; r = r.NextSibling() {
		var cells []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, l.plainText(c))
		}
		cols = max(cols, len(cells))
		rows = append(rows, cells)
		_, isHeader := r.(*east.TableHeader)
		header = append(header, isHeader)
	}
	if cols == 0 {
		return
	}

	width := l.contentWidth() / float64(cols)
	l.pdf.SetFillColor(235, 235, 235)
	for i, row := range rows {
		style := ""
		if header[i] {
			style = "B"
		}
		l.pdf.SetFont(bodyFont, style, bodySize-1)
		for j := 0; j < cols; j++ {
			cell := ""
			if j < len(row) {
				cell = l.fit(l.tr(row[j]), width-2)
			}
			l.pdf.CellFormat(width, tableRowHeight, cell, "1", 0, "L", header[i], 0, "")
		}
		l.pdf.Ln(tableRowHeight)
	}
	l.pdf.Ln(2)
}

// fit truncates s so it renders within width using the current font.
func (l *layout) fit(s string, width float64) string {
	if l.pdf.GetStringWidth(s) <= width {
		return s
	}
	b := []byte(s)
	for len(b) > 0 && l.pdf.GetStringWidth(string(b)+"...") > width {
		b = b[:len(b)-1]
	}
	return string(b) + "..."
}

func (l *layout) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(l.src))
	}
	return buf.String()
}

func (l *layout) plainText(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch c := c.(type) {
		case *ast.Text:
			b.Write(c.Segment.Value(l.src))
			if c.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(c.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
