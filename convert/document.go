package convert

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/source"
)

// Input formats understood by document converters.
const (
	FormatPlain    = "plain"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// DefaultPandocBinary is the document converter used by PandocConverter.
const DefaultPandocBinary = "pandoc"

// DocumentConverter turns a text document of the given format into a PDF
// written at out. Implementations must not modify in.
type DocumentConverter interface {
	Convert(ctx context.Context, in *source.SourceFile, format string, out string) error
}

// RendererConverter converts documents in-process using a Renderer.
type RendererConverter struct {
	Renderer *Renderer
}

var _ DocumentConverter = (*RendererConverter)(nil)

// Convert renders in to a PDF at out.
func (c *RendererConverter) Convert(_ context.Context, in *source.SourceFile, format string, out string) error {
	buf, err := in.Buffer()
	if err != nil {
		return err
	}

	w, err := os.Create(out)
	if err != nil {
		return err
	}

	switch format {
	case FormatPlain:
		err = c.Renderer.RenderPlain(string(buf), w)
	case FormatMarkdown, "md", "gfm":
		err = c.Renderer.RenderMarkdown(buf, w)
	case FormatHTML:
		err = c.Renderer.RenderMarkdown([]byte(Fence("html", string(buf))), w)
	default:
		err = fmt.Errorf("unsupported input format %q", format)
	}
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(out)
		return &core.ConversionError{DocumentID: in.ID, Err: err}
	}
	return nil
}

// PandocConverter converts documents by running pandoc as a subprocess.
type PandocConverter struct {
	Binary  string
	Timeout time.Duration
	Runner  Runner
}

var _ DocumentConverter = (*PandocConverter)(nil)

// NewPandocConverter returns a converter for the given binary.
// An empty binary selects DefaultPandocBinary; a nil runner selects ExecRunner.
func NewPandocConverter(binary string, runner Runner) *PandocConverter {
	if binary == "" {
		binary = DefaultPandocBinary
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &PandocConverter{Binary: binary, Runner: runner}
}

// Convert runs pandoc on in and writes the PDF to out.
// Plain text is read with pandoc's markdown reader.
func (c *PandocConverter) Convert(ctx context.Context, in *source.SourceFile, format string, out string) error {
	from := format
	if from == FormatPlain {
		from = FormatMarkdown
	}
	cmd := Command{
		Name:    c.Binary,
		Args:    []string{"--from", from, "--to", "pdf", "--output", out, in.Path},
		Timeout: c.Timeout,
	}

	res, err := c.Runner.Run(ctx, cmd)
	if err != nil {
		return &core.ConversionError{DocumentID: in.ID, Command: c.Binary, ExitCode: -1, Err: err}
	}
	if res.ExitCode != 0 {
		os.Remove(out)
		return &core.ConversionError{
			DocumentID: in.ID,
			Command:    c.Binary,
			ExitCode:   res.ExitCode,
			Output:     res.Output(),
		}
	}
	return nil
}
