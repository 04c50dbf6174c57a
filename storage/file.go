package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zeebo/xxh3"
)

// FileStore writes one file per key inside a directory.
type FileStore struct {
	dir   string
	mutex sync.RWMutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates dir if needed. An empty dir defaults to ".revai" in the working directory.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		dir = filepath.Join(cwd, ".revai")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &FileStore{dir: dir}, nil
}

// keyPath maps an arbitrary key to a stable file name.
func (fs *FileStore) keyPath(key string) string {
	return filepath.Join(fs.dir, fmt.Sprintf("%x.json", xxh3.HashString(key)))
}

func (fs *FileStore) Get(key string) ([]byte, error) {
	fs.mutex.RLock()
	defer fs.mutex.RUnlock()

	data, err := os.ReadFile(fs.keyPath(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Put writes through a temp file and rename so readers never see a partial value.
func (fs *FileStore) Put(key string, data []byte) error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	target := fs.keyPath(key)
	tmp, err := os.CreateTemp(fs.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to commit %s: %w", key, err)
	}
	return nil
}

func (fs *FileStore) Delete(key string) error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	if err := os.Remove(fs.keyPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Dir returns the backing directory.
func (fs *FileStore) Dir() string { return fs.dir }

func (fs *FileStore) Close() error { return nil }
