package storage

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrNotFound is returned by a Store when a key has never been written or was deleted.
var ErrNotFound = errors.New("storage: key not found")

// Well-known keys shared by the services persisting through a Store.
const (
	KeyChatHistory   = "chat_history"
	KeyReviewHistory = "review_history"
	KeyWorkspace     = "workspace"
	KeyTheme         = "theme"
	KeyLocale        = "locale"
)

// Store is a durable key-value port. Values are opaque bytes; Value[T] layers JSON on top.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, data []byte) error
	Delete(key string) error
	Close() error
}

// Open builds the Store selected by driver. path is a directory for "file" and a database
// file for "sqlite"; it is ignored for "memory".
func Open(driver string, path string) (Store, error) {
	switch driver {
	case "memory":
		return NewMemoryStore(), nil
	case "file", "":
		return NewFileStore(path)
	case "sqlite":
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "revai.db")
		}
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
