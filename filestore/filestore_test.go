package filestore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/folio/config"
	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/source"
)

func useTempRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	source.SetTempRoot(root)
	t.Cleanup(func() { source.SetTempRoot("") })
	return root
}

func newPDF(t *testing.T, id, content string) *source.SourceFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preview.pdf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return source.New(path, source.MimePDF, "report.docx", source.WithID(id))
}

func TestNew(t *testing.T) {
	s, err := New(config.FileStore{})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = New(config.FileStore{Type: config.FileStoreFilesystem, BasePath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &Filesystem{}, s)

	s, err = New(config.FileStore{Type: config.FileStorePostgres})
	require.NoError(t, err)
	assert.IsType(t, &Postgres{}, s)

	_, err = New(config.FileStore{Type: "ftp"})
	assert.ErrorIs(t, err, core.ErrUnknownBackend)

	_, err = New(config.FileStore{Type: config.FileStoreFilesystem})
	assert.ErrorIs(t, err, core.ErrConfigurationMissing)

	_, err = New(config.FileStore{Type: config.FileStoreS3})
	assert.ErrorIs(t, err, core.ErrConfigurationMissing)

	_, err = New(config.FileStore{Type: config.FileStoreS3, Endpoint: "localhost:9000"})
	assert.ErrorIs(t, err, ErrBucketRequired)
}

// storeContract exercises behavior every working backend shares.
func storeContract(t *testing.T, s Store) {
	ctx := context.Background()
	root := useTempRoot(t)

	ok, err := s.Exists(ctx, "doc-1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "doc-1"), core.ErrNotFound)

	in := newPDF(t, "doc-1", "%PDF-1.4 first")
	require.NoError(t, s.AddDocument(ctx, in))
	assert.True(t, in.Exists(), "input stays with the caller")

	ok, err = s.Exists(ctx, "doc-1")
	require.NoError(t, err)
	assert.True(t, ok)

	out, err := s.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", out.ID)
	assert.Equal(t, source.MimePDF, out.MimeType)
	assert.Equal(t, "doc-1.pdf", out.FileName)
	assert.Equal(t, root, filepath.Dir(out.Path))
	data, err := out.Buffer()
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 first", string(data))
	require.NoError(t, out.Delete())

	// re-adding replaces the stored copy
	require.NoError(t, s.AddDocument(ctx, newPDF(t, "doc-1", "%PDF-1.4 second")))
	out, err = s.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	data, _ = out.Buffer()
	assert.Equal(t, "%PDF-1.4 second", string(data))
	require.NoError(t, out.Delete())

	require.NoError(t, s.Delete(ctx, "doc-1"))
	ok, err = s.Exists(ctx, "doc-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFilesystem(t *testing.T) {
	s, err := NewFilesystem(filepath.Join(t.TempDir(), "store"))
	require.NoError(t, err)
	storeContract(t, s)
}

func TestFilesystem_PathTraversal(t *testing.T) {
	ctx := context.Background()
	useTempRoot(t)
	base := filepath.Join(t.TempDir(), "store")
	s, err := NewFilesystem(base)
	require.NoError(t, err)

	require.NoError(t, s.AddDocument(ctx, newPDF(t, "../../escape", "x")))

	_, err = os.Stat(filepath.Join(base, "escape"))
	assert.NoError(t, err, "id is reduced to its base name")
	_, err = os.Stat(filepath.Join(filepath.Dir(base), "escape"))
	assert.True(t, os.IsNotExist(err))

	ok, err := s.Exists(ctx, "../../escape")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFilesystem_InvalidIDs(t *testing.T) {
	ctx := context.Background()
	useTempRoot(t)
	s, err := NewFilesystem(filepath.Join(t.TempDir(), "store"))
	require.NoError(t, err)

	for _, id := range []string{"", ".", "..", "a/..", "/"} {
		t.Run(id, func(t *testing.T) {
			ok, err := s.Exists(ctx, id)
			require.NoError(t, err)
			assert.False(t, ok)

			_, err = s.GetDocument(ctx, id)
			assert.ErrorIs(t, err, core.ErrNotFound)

			assert.ErrorIs(t, s.Delete(ctx, id), core.ErrNotFound)
			f := newPDF(t, "", "x")
			f.ID = id
			assert.ErrorIs(t, s.AddDocument(ctx, f), ErrInvalidDocumentID)
		})
	}
}

func TestPostgres(t *testing.T) {
	ctx := context.Background()
	s := NewPostgres()

	assert.ErrorIs(t, s.AddDocument(ctx, &source.SourceFile{}), core.ErrNotImplemented)
	assert.ErrorIs(t, s.Delete(ctx, "x"), core.ErrNotImplemented)
	_, err := s.GetDocument(ctx, "x")
	assert.ErrorIs(t, err, core.ErrNotImplemented)
	_, err = s.Exists(ctx, "x")
	assert.ErrorIs(t, err, core.ErrNotImplemented)
}

// fakeObjectClient is an in-memory bucket that reports missing keys the
// way S3 does.
type fakeObjectClient struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	failErr error
}

func newFakeObjectClient() *fakeObjectClient {
	return &fakeObjectClient{objects: map[string][]byte{}, types: map[string]string{}}
}

var noSuchKey = minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404, Message: "The specified key does not exist."}

func (c *fakeObjectClient) PutObject(_ context.Context, _, key string, r io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects[key] = data
	c.types[key] = opts.ContentType
	return minio.UploadInfo{Key: key, Size: int64(len(data))}, nil
}

func (c *fakeObjectClient) StatObject(_ context.Context, _, key string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failErr != nil {
		return minio.ObjectInfo{}, c.failErr
	}
	data, ok := c.objects[key]
	if !ok {
		return minio.ObjectInfo{}, noSuchKey
	}
	return minio.ObjectInfo{Key: key, Size: int64(len(data))}, nil
}

func (c *fakeObjectClient) RemoveObject(_ context.Context, _, key string, _ minio.RemoveObjectOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objects, key)
	return nil
}

func (c *fakeObjectClient) FGetObject(_ context.Context, _, key, path string, _ minio.GetObjectOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failErr != nil {
		return c.failErr
	}
	data, ok := c.objects[key]
	if !ok {
		return noSuchKey
	}
	return os.WriteFile(path, data, 0o600)
}

func TestObjectStore(t *testing.T) {
	client := newFakeObjectClient()
	s, err := NewObjectStoreWithClient(client, "previews")
	require.NoError(t, err)
	storeContract(t, s)
}

func TestObjectStore_ContentType(t *testing.T) {
	ctx := context.Background()
	client := newFakeObjectClient()
	s, err := NewObjectStoreWithClient(client, "previews")
	require.NoError(t, err)

	f := newPDF(t, "doc", "x")
	f.MimeType = ""
	require.NoError(t, s.AddDocument(ctx, f))
	assert.Equal(t, source.MimePDF, client.types["doc"])
}

func TestObjectStore_OtherErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	root := useTempRoot(t)
	denied := minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403}
	client := newFakeObjectClient()
	client.failErr = denied
	s, err := NewObjectStoreWithClient(client, "previews")
	require.NoError(t, err)

	_, err = s.GetDocument(ctx, "doc")
	assert.False(t, errors.Is(err, core.ErrNotFound))
	assert.Equal(t, "AccessDenied", minio.ToErrorResponse(err).Code)

	_, err = s.Exists(ctx, "doc")
	assert.Equal(t, "AccessDenied", minio.ToErrorResponse(err).Code)
	assert.Error(t, s.Delete(ctx, "doc"))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed downloads leave no temp files")
}

func TestNewObjectStoreWithClient_RequiresBucket(t *testing.T) {
	_, err := NewObjectStoreWithClient(newFakeObjectClient(), "")
	assert.ErrorIs(t, err, ErrBucketRequired)
	assert.ErrorIs(t, err, core.ErrConfigurationMissing)
}
