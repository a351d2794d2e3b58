package folio

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/folio/ai/mock"
	"github.com/poiesic/folio/config"
	"github.com/poiesic/folio/convert"
	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/ingestion"
	"github.com/poiesic/folio/search"
	"github.com/poiesic/folio/source"
)

func testConfig(t *testing.T, withFiles bool) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.TempRoot = t.TempDir()
	cfg.VectorStore.URL = "badger://memory"
	if withFiles {
		cfg.FileStore = config.FileStore{Type: config.FileStoreFilesystem, BasePath: t.TempDir()}
	}
	t.Cleanup(func() { source.SetTempRoot("") })
	return cfg
}

func openLibrary(t *testing.T, cfg *config.Config, opts ...Option) *Library {
	t.Helper()
	opts = append([]Option{WithProvider(mock.NewMockProvider())}, opts...)
	lib, err := Open(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	return lib
}

func writeFile(t *testing.T, name, content string) *source.SourceFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return source.New(path, "", name)
}

func TestOpen(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		lib, err := Open(nil)
		assert.ErrorIs(t, err, core.ErrConfigurationMissing)
		assert.Nil(t, lib)
	})

	t.Run("missing vector store url", func(t *testing.T) {
		cfg := testConfig(t, false)
		cfg.VectorStore.URL = ""
		_, err := Open(cfg, WithProvider(mock.NewMockProvider()))
		assert.ErrorIs(t, err, core.ErrConfigurationMissing)
	})

	t.Run("unknown file store", func(t *testing.T) {
		cfg := testConfig(t, false)
		cfg.FileStore.Type = "tape"
		_, err := Open(cfg, WithProvider(mock.NewMockProvider()))
		assert.ErrorIs(t, err, core.ErrUnknownBackend)
	})

	t.Run("sets the temp root", func(t *testing.T) {
		cfg := testConfig(t, false)
		lib := openLibrary(t, cfg)
		assert.Equal(t, cfg.TempRoot, source.TempRoot())
		assert.NotNil(t, lib.Registry())
		assert.NotNil(t, lib.Searcher())
	})
}

func TestLibrary_Close(t *testing.T) {
	provider := mock.NewMockProvider()
	lib, err := Open(testConfig(t, false), WithProvider(provider))
	require.NoError(t, err)
	assert.NoError(t, lib.Close())
	assert.Equal(t, 1, provider.(*mock.MockProvider).CloseCount())
}

func TestLibrary_IngestSearchPreviewDelete(t *testing.T) {
	lib := openLibrary(t, testConfig(t, true))
	ctx := context.Background()
	f := writeFile(t, "guide.md", "# Setup\n\nInstall the package and run the server.")

	res, err := lib.Ingest(ctx, f, "b1", "")
	require.NoError(t, err)
	assert.True(t, res.Preview)
	assert.Positive(t, res.Chunks)

	results, err := lib.Search(ctx, search.Query{Text: "install", Bucket: "b1"})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, f.ID, results[0].DocID)
	assert.Equal(t, "guide.md", results[0].FileName)

	pdf, err := lib.PreviewPDF(ctx, f.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	require.NoError(t, lib.Delete(ctx, f.ID, "b1", ""))

	_, err = lib.PreviewPDF(ctx, f.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	results, err = lib.Search(ctx, search.Query{Text: "install", Bucket: "b1"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLibrary_PreviewWithoutFileStore(t *testing.T) {
	lib := openLibrary(t, testConfig(t, false))

	_, err := lib.PreviewPDF(context.Background(), "doc-1")
	assert.ErrorIs(t, err, core.ErrConfigurationMissing)
}

// officeRunner stands in for soffice and writes a rendered PDF where
// soffice would.
type officeRunner struct {
	pdf []byte
}

func (r *officeRunner) Run(_ context.Context, cmd convert.Command) (convert.Result, error) {
	var outDir string
	for i, a := range cmd.Args {
		if a == "--outdir" && i+1 < len(cmd.Args) {
			outDir = cmd.Args[i+1]
		}
	}
	input := cmd.Args[len(cmd.Args)-1]
	return convert.Result{}, os.WriteFile(convert.OutputPath(outDir, input), r.pdf, 0o600)
}

func TestLibrary_IngestBatchWithOfficeDocuments(t *testing.T) {
	var pdf bytes.Buffer
	require.NoError(t, convert.NewRenderer("").RenderMarkdown([]byte("Board minutes for March"), &pdf))

	var progress bytes.Buffer
	lib := openLibrary(t, testConfig(t, true),
		WithRunner(&officeRunner{pdf: pdf.Bytes()}),
		WithProgress(&progress, 1))
	ctx := context.Background()

	docx := writeFile(t, "minutes.docx", "binary word data")
	txt := writeFile(t, "todo.txt", "review the board minutes")
	res := lib.IngestBatch(ctx, []ingestion.Job{
		{File: docx, Bucket: "b1"},
		{File: txt, Bucket: "b1"},
	})
	require.Equal(t, 2, res.Succeeded, "errors: %v", res.Errors)
	assert.Zero(t, res.Failed)
	assert.Contains(t, progress.String(), "2/2")

	results, err := lib.Search(ctx, search.Query{Text: "minutes", Bucket: "b1", DocIDs: []string{docx.ID}})
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, docx.ID, r.DocID)
		assert.Equal(t, 1, r.Metadata[core.MetadataPage])
	}

	preview, err := lib.PreviewPDF(ctx, docx.ID)
	require.NoError(t, err)
	assert.Equal(t, pdf.Bytes(), preview)
}
