package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// TempRootEnv names the environment variable that overrides the temp root.
const TempRootEnv = "TMP_FILES_ROOT"

var (
	tempRootMu sync.RWMutex
	tempRoot   string
)

// SetTempRoot sets the directory under which temporary files are created.
// An empty dir restores the default.
func SetTempRoot(dir string) {
	tempRootMu.Lock()
	defer tempRootMu.Unlock()
	tempRoot = dir
}

// TempRoot returns the directory for temporary files: the value passed to
// SetTempRoot, else $TMP_FILES_ROOT, else os.TempDir().
func TempRoot() string {
	tempRootMu.RLock()
	root := tempRoot
	tempRootMu.RUnlock()
	if root != "" {
		return root
	}
	if env := os.Getenv(TempRootEnv); env != "" {
		return env
	}
	return os.TempDir()
}

// NewFilePath returns a fresh path under the temp root. When name is empty
// a random one is used; ext is appended with a leading dot if missing.
func NewFilePath(name, ext string) (string, error) {
	root := TempRoot()
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", err
	}
	if name == "" {
		name = uuid.NewString()
	}
	return filepath.Join(root, name+normalizeExt(ext)), nil
}

// NewTemporaryFile allocates a fresh identity and location, optionally
// pre-populated with buf. The caller owns the result and must Delete it.
func NewTemporaryFile(buf []byte, ext string) (*SourceFile, error) {
	id := uuid.NewString()
	fileName := id + normalizeExt(ext)

	path, err := NewFilePath(fileName, "")
	if err != nil {
		return nil, err
	}
	if len(buf) > 0 {
		if err := os.WriteFile(path, buf, 0o600); err != nil {
			return nil, err
		}
	}

	return &SourceFile{ID: id, Path: path, FileName: fileName}, nil
}

// TempOption configures a scoped temporary file.
type TempOption func(*tempOptions)

type tempOptions struct {
	ext      string
	mimeType string
	fileName string
}

// WithExt sets the extension of the backing file.
func WithExt(ext string) TempOption {
	return func(o *tempOptions) { o.ext = ext }
}

// WithMimeType sets the MIME type reported by the yielded SourceFile.
func WithMimeType(mimeType string) TempOption {
	return func(o *tempOptions) { o.mimeType = mimeType }
}

// WithFileName sets the logical file name of the yielded SourceFile.
// It defaults to the backing file's base name.
func WithFileName(name string) TempOption {
	return func(o *tempOptions) { o.fileName = name }
}

// TempFile materializes buf in a new file and returns a SourceFile wrapping
// it along with a release func that removes the backing file.
// Prefer WithTempFile, which cannot forget the release.
func TempFile(buf []byte, opts ...TempOption) (*SourceFile, func() error, error) {
	o := &tempOptions{}
	for _, opt := range opts {
		opt(o)
	}

	root := TempRoot()
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, nil, err
	}
	tmp, err := os.CreateTemp(root, "tmp-*"+normalizeExt(o.ext))
	if err != nil {
		return nil, nil, err
	}
	path := tmp.Name()

	_, werr := tmp.Write(buf)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(path)
		return nil, nil, err
	}

	fileName := o.fileName
	if fileName == "" {
		fileName = filepath.Base(path)
	}

	f := New(path, o.mimeType, fileName)
	release := func() error {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	return f, release, nil
}

// WithTempFile materializes buf, calls fn with a SourceFile wrapping it and
// removes the backing file on every exit path, including a panic in fn.
func WithTempFile(buf []byte, fn func(*SourceFile) error, opts ...TempOption) (err error) {
	f, release, err := TempFile(buf, opts...)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, release())
	}()
	return fn(f)
}

func normalizeExt(ext string) string {
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}
