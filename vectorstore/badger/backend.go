package badger

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// Backend is one open Badger database shared by every collection stored in
// it. Writes go through WriteBatch and reads through read-only transactions.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLog routes Badger's printf-style logging into slog. Badger is
// chatty at info level, so info is demoted to debug.
type badgerLog struct {
	logger *slog.Logger
}

var _ badger.Logger = badgerLog{}

func (l badgerLog) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l badgerLog) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l badgerLog) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l badgerLog) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// OpenBackend opens the database directory at dir, creating it when
// missing. With inMemory set dir is ignored and nothing touches disk.
func OpenBackend(dir string, inMemory bool) (*Backend, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	if !inMemory {
		if err := ensureDir(dir); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(dir)
	}

	logger := slog.Default().With("component", "badger-vectorstore", "in_memory", inMemory)
	// Vectors are float noise to a block compressor.
	opts = opts.WithLogger(badgerLog{logger: logger}).WithCompression(options.None)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", dir, err)
	}
	return &Backend{db: db, logger: logger}, nil
}

func ensureDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		return os.MkdirAll(dir, 0o755)
	case err != nil:
		return err
	case !info.IsDir():
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// Close closes the database. Stores on it fail with ErrStoreClosed afterwards.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed reports whether Close has been called.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// View runs fn in a read-only transaction.
func (b *Backend) View(fn func(tx *badger.Txn) error) error {
	if b.IsClosed() {
		return ErrStoreClosed
	}
	return b.db.View(fn)
}

// Batch runs fn against a write batch and flushes it. Write batches have
// no transaction size limit and no conflict detection, so large documents
// and concurrent ingestion of distinct documents both work.
func (b *Backend) Batch(fn func(wb *badger.WriteBatch) error) error {
	if b.IsClosed() {
		return ErrStoreClosed
	}
	wb := b.db.NewWriteBatch()
	if err := fn(wb); err != nil {
		wb.Cancel()
		return err
	}
	return wb.Flush()
}

// scanPrefix calls fn with the key and value of every item under prefix.
func scanPrefix(tx *badger.Txn, prefix []byte, fn func(key, val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := tx.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)
		if err := item.Value(func(val []byte) error { return fn(key, val) }); err != nil {
			return err
		}
	}
	return nil
}
