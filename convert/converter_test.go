package convert

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/source"
)

// fakeRunner records commands and simulates an office suite by writing a
// PDF into the --outdir argument.
type fakeRunner struct {
	exitCode int
	err      error
	skipOut  bool
	commands []Command
}

func (r *fakeRunner) Run(_ context.Context, cmd Command) (Result, error) {
	r.commands = append(r.commands, cmd)
	if r.err != nil {
		return Result{}, r.err
	}
	if r.exitCode != 0 {
		return Result{ExitCode: r.exitCode, Stderr: "conversion error"}, nil
	}
	if !r.skipOut {
		var outDir string
		for i, a := range cmd.Args {
			if a == "--outdir" {
				outDir = cmd.Args[i+1]
			}
		}
		in := cmd.Args[len(cmd.Args)-1]
		if err := os.WriteFile(OutputPath(outDir, in), []byte("%PDF-1.4\n"), 0o600); err != nil {
			return Result{}, err
		}
	}
	return Result{}, nil
}

func newInput(t *testing.T, name, content string) *source.SourceFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return source.New(path, "", name, source.WithID("doc-1"))
}

func useTempRoot(t *testing.T) {
	t.Helper()
	source.SetTempRoot(t.TempDir())
	t.Cleanup(func() { source.SetTempRoot("") })
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/out", "report.pdf"), OutputPath("/out", "/in/report.docx"))
	assert.Equal(t, filepath.Join("/out", "archive.tar.pdf"), OutputPath("/out", "/in/archive.tar.gz"))
	assert.Equal(t, filepath.Join("/out", "noext.pdf"), OutputPath("/out", "/in/noext"))
}

func TestOfficeToPDF(t *testing.T) {
	useTempRoot(t)
	ctx := context.Background()

	t.Run("success produces caller-owned pdf", func(t *testing.T) {
		runner := &fakeRunner{}
		c, err := New(WithRunner(runner), WithSofficeBinary("lo"))
		require.NoError(t, err)

		in := newInput(t, "Report.docx", "office bytes")
		out, err := c.OfficeToPDF(ctx, in)
		require.NoError(t, err)

		assert.Equal(t, "doc-1", out.ID)
		assert.Equal(t, source.MimePDF, out.MimeType)
		assert.Equal(t, "Report.docx", out.FileName)
		assert.True(t, out.Exists())
		assert.True(t, in.Exists(), "input must not be touched")

		require.Len(t, runner.commands, 1)
		cmd := runner.commands[0]
		assert.Equal(t, "lo", cmd.Name)
		assert.Contains(t, cmd.Args, "--headless")
		assert.Contains(t, cmd.Args, "--convert-to")
		assert.Equal(t, in.Path, cmd.Args[len(cmd.Args)-1])

		dir := filepath.Dir(out.Path)
		require.NoError(t, out.Delete())
		_, err = os.Stat(dir)
		assert.True(t, errors.Is(err, os.ErrNotExist), "output directory should be removed with the file")
	})

	t.Run("non-zero exit is a conversion failure with the document id", func(t *testing.T) {
		c, err := New(WithRunner(&fakeRunner{exitCode: 77}))
		require.NoError(t, err)

		_, err = c.OfficeToPDF(ctx, newInput(t, "a.docx", "x"))
		require.ErrorIs(t, err, core.ErrConversionFailed)

		var ce *core.ConversionError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "doc-1", ce.DocumentID)
		assert.Equal(t, 77, ce.ExitCode)
		assert.Equal(t, "conversion error", ce.Output)
	})

	t.Run("missing output is a conversion failure", func(t *testing.T) {
		c, err := New(WithRunner(&fakeRunner{skipOut: true}))
		require.NoError(t, err)

		_, err = c.OfficeToPDF(ctx, newInput(t, "a.docx", "x"))
		require.ErrorIs(t, err, core.ErrConversionFailed)
	})

	t.Run("start failure is a conversion failure", func(t *testing.T) {
		c, err := New(WithRunner(&fakeRunner{err: exec.ErrNotFound}))
		require.NoError(t, err)

		_, err = c.OfficeToPDF(ctx, newInput(t, "a.docx", "x"))
		require.ErrorIs(t, err, core.ErrConversionFailed)
		assert.ErrorIs(t, err, exec.ErrNotFound)
	})
}

func TestNewOptionOrder(t *testing.T) {
	runner := &fakeRunner{}
	orders := map[string][]Option{
		"runner and timeout first": {
			WithRunner(runner), WithTimeout(time.Minute), WithDocumentConverter(NewPandocConverter("", nil)),
		},
		"pandoc first": {
			WithDocumentConverter(NewPandocConverter("", nil)), WithTimeout(time.Minute), WithRunner(runner),
		},
	}
	for name, opts := range orders {
		t.Run(name, func(t *testing.T) {
			c, err := New(opts...)
			require.NoError(t, err)

			assert.Same(t, runner, c.office.Runner)
			assert.Equal(t, time.Minute, c.office.Timeout)
			pandoc, ok := c.document.(*PandocConverter)
			require.True(t, ok)
			assert.Same(t, runner, pandoc.Runner)
			assert.Equal(t, time.Minute, pandoc.Timeout)
		})
	}

	t.Run("code style reaches the default renderer", func(t *testing.T) {
		c, err := New(WithCodeStyle("monokai"))
		require.NoError(t, err)
		rc, ok := c.document.(*RendererConverter)
		require.True(t, ok)
		assert.Same(t, c.renderer, rc.Renderer)
	})
}

func TestNewRejectsNilDependencies(t *testing.T) {
	_, err := New(WithRunner(nil))
	assert.ErrorIs(t, err, ErrRunnerRequired)

	_, err = New(WithDocumentConverter(nil))
	assert.ErrorIs(t, err, ErrDocumentConverterRequired)
}

func assertPDF(t *testing.T, f *source.SourceFile) {
	t.Helper()
	buf, err := f.Buffer()
	require.NoError(t, err)
	require.NotEmpty(t, buf)
	assert.True(t, bytes.HasPrefix(buf, []byte("%PDF")), "output should be a PDF")
}

func TestTextToPDF(t *testing.T) {
	useTempRoot(t)
	c, err := New()
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("markdown", func(t *testing.T) {
		in := newInput(t, "page.md", "# Title\n\nSome *text* with `code`.\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n```go\nfunc main() {}\n```\n\n- one\n- two\n")
		out, err := c.TextToPDF(ctx, in, "")
		require.NoError(t, err)
		defer out.Delete()

		assert.Equal(t, in.ID, out.ID)
		assert.Equal(t, "page.md", out.FileName)
		assert.Equal(t, source.MimePDF, out.MimeType)
		assertPDF(t, out)
		assert.True(t, in.Exists())
	})

	t.Run("language hint renders source verbatim", func(t *testing.T) {
		in := newInput(t, "index.html", "<html><body><script>alert(1)</script>```</body></html>")
		out, err := c.TextToPDF(ctx, in, "html")
		require.NoError(t, err)
		defer out.Delete()
		assertPDF(t, out)
	})

	t.Run("empty input still yields a document", func(t *testing.T) {
		in := newInput(t, "empty.md", "")
		out, err := c.TextToPDF(ctx, in, "")
		require.NoError(t, err)
		defer out.Delete()
		size, err := out.Size()
		require.NoError(t, err)
		assert.Positive(t, size)
	})
}

func TestPlainToPDF(t *testing.T) {
	root := t.TempDir()
	source.SetTempRoot(root)
	defer source.SetTempRoot("")

	c, err := New()
	require.NoError(t, err)

	out, err := c.PlainToPDF(context.Background(), "From: a@example.com\nSubject: hi\n\nbody", "mail-1", "mail.eml")
	require.NoError(t, err)
	defer out.Delete()

	assert.Equal(t, "mail-1", out.ID)
	assert.Equal(t, "mail.eml", out.FileName)
	assertPDF(t, out)

	// Only the output remains; the intermediate text file is gone.
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(out.Path), entries[0].Name())
}

func TestPandocConverter(t *testing.T) {
	useTempRoot(t)
	in := newInput(t, "a.txt", "text")

	t.Run("maps plain to markdown reader", func(t *testing.T) {
		runner := &fakeRunner{skipOut: true}
		p := NewPandocConverter("", runner)
		require.NoError(t, p.Convert(context.Background(), in, FormatPlain, "/tmp/out.pdf"))

		require.Len(t, runner.commands, 1)
		assert.Equal(t, DefaultPandocBinary, runner.commands[0].Name)
		assert.Equal(t, []string{"--from", "markdown", "--to", "pdf", "--output", "/tmp/out.pdf", in.Path},
			runner.commands[0].Args)
	})

	t.Run("non-zero exit fails", func(t *testing.T) {
		p := NewPandocConverter("pandoc", &fakeRunner{exitCode: 1})
		err := p.Convert(context.Background(), in, FormatPlain, filepath.Join(t.TempDir(), "o.pdf"))
		require.ErrorIs(t, err, core.ErrConversionFailed)
	})
}

func TestFence(t *testing.T) {
	assert.Equal(t, "```html\n<p/>\n```\n", Fence("html", "<p/>"))
	assert.Equal(t, "````\na ``` b\n````\n", Fence("", "a ``` b"))
}

func TestExecRunner(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	r := ExecRunner{}

	res, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo out; echo err >&2; exit 3"}})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Output())

	_, err = r.Run(context.Background(), Command{Name: "definitely-not-a-binary-folio"})
	assert.Error(t, err)
}
