package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSourceFile_Basics(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "hello")

	f := New(path, "text/plain", "Report.TXT")
	assert.NotEmpty(t, f.ID)
	assert.True(t, f.Exists())
	assert.Equal(t, "TXT", f.Ext())

	size, err := f.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	buf, err := f.Buffer()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))

	g := New(path, "", "a.txt", WithID("fixed"))
	assert.Equal(t, "fixed", g.ID)
}

func TestSourceFile_Delete(t *testing.T) {
	t.Run("disposes preview, file and directory in order", func(t *testing.T) {
		parent := t.TempDir()
		dir := filepath.Join(parent, "upload")
		require.NoError(t, os.Mkdir(dir, 0o755))

		previewDir := t.TempDir()
		preview := New(writeFile(t, previewDir, "p.pdf", "%PDF"), MimePDF, "p.pdf")
		f := New(writeFile(t, dir, "a.txt", "x"), "text/plain", "a.txt", WithDeleteDir())
		f.PreviewPDF = preview

		require.NoError(t, f.Delete())
		assert.Nil(t, f.PreviewPDF)
		assert.False(t, preview.Exists())
		assert.False(t, f.Exists())
		_, err := os.Stat(dir)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("already deleted file still cleans up preview and dir", func(t *testing.T) {
		parent := t.TempDir()
		dir := filepath.Join(parent, "gone")
		require.NoError(t, os.Mkdir(dir, 0o755))

		preview := New(writeFile(t, t.TempDir(), "p.pdf", "%PDF"), MimePDF, "p.pdf")
		f := New(filepath.Join(dir, "missing.txt"), "", "missing.txt", WithDeleteDir())
		f.PreviewPDF = preview

		require.NoError(t, f.Delete())
		assert.False(t, preview.Exists())
		_, err := os.Stat(dir)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("delete twice is a no-op", func(t *testing.T) {
		f := New(writeFile(t, t.TempDir(), "a.txt", "x"), "", "a.txt")
		require.NoError(t, f.Delete())
		require.NoError(t, f.Delete())
	})
}

func TestNewTemporaryFile(t *testing.T) {
	SetTempRoot(t.TempDir())
	defer SetTempRoot("")

	f, err := NewTemporaryFile([]byte("data"), "pdf")
	require.NoError(t, err)
	defer f.Delete()

	assert.Equal(t, f.ID+".pdf", f.FileName)
	assert.Equal(t, "pdf", f.Ext())
	assert.Equal(t, TempRoot(), filepath.Dir(f.Path))
	buf, err := f.Buffer()
	require.NoError(t, err)
	assert.Equal(t, "data", string(buf))

	empty, err := NewTemporaryFile(nil, ".txt")
	require.NoError(t, err)
	assert.False(t, empty.Exists())
	assert.Equal(t, "txt", empty.Ext())
}

func TestWithTempFile(t *testing.T) {
	SetTempRoot(t.TempDir())
	defer SetTempRoot("")

	t.Run("removes file after success", func(t *testing.T) {
		var path string
		err := WithTempFile([]byte("body"), func(f *SourceFile) error {
			path = f.Path
			assert.True(t, f.Exists())
			assert.Equal(t, "note.md", f.FileName)
			assert.Equal(t, "text/markdown", f.MimeType)
			return nil
		}, WithExt("md"), WithMimeType("text/markdown"), WithFileName("note.md"))
		require.NoError(t, err)
		_, statErr := os.Stat(path)
		assert.True(t, errors.Is(statErr, os.ErrNotExist))
	})

	t.Run("removes file after error", func(t *testing.T) {
		var path string
		boom := errors.New("boom")
		err := WithTempFile([]byte("body"), func(f *SourceFile) error {
			path = f.Path
			return boom
		})
		require.ErrorIs(t, err, boom)
		_, statErr := os.Stat(path)
		assert.True(t, errors.Is(statErr, os.ErrNotExist))
	})

	t.Run("removes file after panic", func(t *testing.T) {
		var path string
		assert.Panics(t, func() {
			_ = WithTempFile([]byte("body"), func(f *SourceFile) error {
				path = f.Path
				panic("boom")
			})
		})
		_, statErr := os.Stat(path)
		assert.True(t, errors.Is(statErr, os.ErrNotExist))
	})

	t.Run("removal tolerates fn deleting the file", func(t *testing.T) {
		err := WithTempFile([]byte("body"), func(f *SourceFile) error {
			return f.Delete()
		})
		require.NoError(t, err)
	})
}
