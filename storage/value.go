package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Value is a typed view of one key in a Store.
type Value[T any] struct {
	store Store
	key   string
}

// NewValue binds key in store to values of type T.
func NewValue[T any](store Store, key string) *Value[T] {
	return &Value[T]{store: store, key: key}
}

// Load returns the stored value. Absent and corrupt entries both yield the zero value and
// false; corruption is logged and otherwise swallowed.
func (v *Value[T]) Load() (T, bool) {
	var out T

	data, err := v.store.Get(v.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logrus.WithField("key", v.key).Warnf("failed to read persisted state: %v", err)
		}
		return out, false
	}

	if err := json.Unmarshal(data, &out); err != nil {
		logrus.WithField("key", v.key).Warnf("discarding corrupt persisted state: %v", err)
		var zero T
		return zero, false
	}
	return out, true
}

// Save serializes val and writes it under the bound key.
func (v *Value[T]) Save(val T) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", v.key, err)
	}
	if err := v.store.Put(v.key, data); err != nil {
		return fmt.Errorf("failed to persist %s: %w", v.key, err)
	}
	return nil
}

// Delete removes the bound key. Deleting an absent key is not an error.
func (v *Value[T]) Delete() error {
	if err := v.store.Delete(v.key); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to delete %s: %w", v.key, err)
	}
	return nil
}
