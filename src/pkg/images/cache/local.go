package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/q-controller/imgctl/src/pkg/utils"
)

// LocalFilesystemBackend keeps blobs as files under root and their metadata
// in a badger database next to them.
type LocalFilesystemBackend struct {
	root string
	db   *badger.DB
	mu   sync.RWMutex
}

var _ Backend = (*LocalFilesystemBackend)(nil)

func NewLocalFilesystemBackend(root string) (*LocalFilesystemBackend, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dbPath := filepath.Join(root, "metadata_badger")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Disable badger logging
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	return &LocalFilesystemBackend{
		root: root,
		db:   db,
	}, nil
}

func (b *LocalFilesystemBackend) Store(imageID, contentType string, data io.Reader) (retErr error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	hash := utils.Hash(imageID)
	filePath := filepath.Join(b.root, hash)

	file, err := os.CreateTemp(b.root, hash+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = file.Close()
			_ = os.Remove(file.Name())
		}
	}()

	size, err := io.Copy(file, data)
	if err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(file.Name(), filepath.Clean(filePath)); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	metadata := &Metadata{
		ImageID:     imageID,
		Hash:        hash,
		ContentType: contentType,
		Size:        size,
		StoredAt:    time.Now(),
	}

	return b.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		return txn.Set([]byte(imageID), data)
	})
}

func (b *LocalFilesystemBackend) Retrieve(imageID string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	metadata, err := b.getMetadata(imageID)
	if err != nil {
		return nil, err
	}

	filePath := filepath.Join(b.root, metadata.Hash)
	file, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: file missing for %s", ErrNotFound, imageID)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (b *LocalFilesystemBackend) Remove(imageID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	metadata, err := b.getMetadata(imageID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil // Nothing cached, consider it already removed
		}
		return fmt.Errorf("failed to get metadata: %w", err)
	}

	if metadata.Hash != "" {
		filePath := filepath.Join(b.root, metadata.Hash)
		if err := os.Remove(filepath.Clean(filePath)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove file: %w", err)
		}
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(imageID))
	})
}

func (b *LocalFilesystemBackend) Exists(imageID string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var exists bool
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(imageID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			exists = false
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	return exists, err
}

func (b *LocalFilesystemBackend) GetMetadata(imageID string) (*Metadata, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.getMetadata(imageID)
}

func (b *LocalFilesystemBackend) getMetadata(imageID string) (*Metadata, error) {
	var metadata Metadata
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(imageID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, imageID)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &metadata)
		})
	})
	if err != nil {
		return nil, err
	}

	return &metadata, nil
}

func (b *LocalFilesystemBackend) List() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var imageIDs []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // Only need keys
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			imageIDs = append(imageIDs, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return imageIDs, err
}

// Close closes the database connection
func (b *LocalFilesystemBackend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
