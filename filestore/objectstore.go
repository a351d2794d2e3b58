package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/poiesic/folio/config"
	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/source"
)

// ErrBucketRequired indicates an object store was configured without a bucket.
var ErrBucketRequired = errors.New("object store bucket is required")

// ObjectClient is the subset of the S3 client the object store uses.
// *minio.Client satisfies it.
type ObjectClient interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error
	FGetObject(ctx context.Context, bucket, key, filePath string, opts minio.GetObjectOptions) error
}

// ObjectStore keeps documents in an S3-compatible bucket, keyed by id.
type ObjectStore struct {
	client ObjectClient
	bucket string
	logger *slog.Logger
}

var _ Store = (*ObjectStore)(nil)

// NewObjectStore connects to the endpoint in cfg.
func NewObjectStore(cfg config.FileStore) (*ObjectStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: object store endpoint (FILESTORE_S3_ENDPOINT)", core.ErrConfigurationMissing)
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}
	return NewObjectStoreWithClient(client, cfg.Bucket)
}

// NewObjectStoreWithClient creates a store over an existing client.
func NewObjectStoreWithClient(client ObjectClient, bucket string) (*ObjectStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("%w: %w", core.ErrConfigurationMissing, ErrBucketRequired)
	}
	return &ObjectStore{
		client: client,
		bucket: bucket,
		logger: slog.Default().With("component", "object-filestore", "bucket", bucket),
	}, nil
}

func (s *ObjectStore) AddDocument(ctx context.Context, f *source.SourceFile) error {
	file, err := os.Open(f.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	contentType := f.MimeType
	if contentType == "" {
		contentType = source.MimePDF
	}
	_, err = s.client.PutObject(ctx, s.bucket, f.ID, file, info.Size(), minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		s.logger.Error("failed to upload document", "doc_id", f.ID, "err", err)
		return err
	}
	return nil
}

func (s *ObjectStore) Delete(ctx context.Context, id string) error {
	exists, err := s.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: document %s", core.ErrNotFound, id)
	}
	return s.client.RemoveObject(ctx, s.bucket, id, minio.RemoveObjectOptions{})
}

func (s *ObjectStore) GetDocument(ctx context.Context, id string) (*source.SourceFile, error) {
	path, err := source.NewFilePath("", "pdf")
	if err != nil {
		return nil, err
	}
	if err := s.client.FGetObject(ctx, s.bucket, id, path, minio.GetObjectOptions{}); err != nil {
		os.Remove(path)
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("%w: document %s", core.ErrNotFound, id)
		}
		return nil, err
	}
	return previewFile(id, path), nil
}

func (s *ObjectStore) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, id, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNoSuchKey(err) {
		return false, nil
	}
	return false, err
}

func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NotFound"
}
