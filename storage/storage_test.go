package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func openStores(t *testing.T) map[string]Store {
	t.Helper()

	fileStore, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteStore.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fileStore,
		"sqlite": sqliteStore,
	}
}

func TestStores_GetPutDelete(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get("missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Put("k", []byte("one")))
			require.NoError(t, store.Put("k", []byte("two")))

			data, err := store.Get("k")
			require.NoError(t, err)
			assert.Equal(t, []byte("two"), data)

			require.NoError(t, store.Delete("k"))
			require.NoError(t, store.Delete("k"))

			_, err = store.Get("k")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestValue_LoadSave(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			v := NewValue[sample](store, KeyWorkspace)

			_, ok := v.Load()
			assert.False(t, ok)

			want := sample{Name: "a", Items: []string{"x", "y"}}
			require.NoError(t, v.Save(want))

			got, ok := v.Load()
			require.True(t, ok)
			assert.Equal(t, want, got)

			require.NoError(t, v.Delete())
			_, ok = v.Load()
			assert.False(t, ok)
		})
	}
}

func TestValue_CorruptDataDefaultsToZero(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Put(KeyReviewHistory, []byte("{not json")))

	got, ok := NewValue[[]sample](store, KeyReviewHistory).Load()
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	first, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, NewValue[string](first, KeyTheme).Save("dracula"))

	second, err := NewFileStore(dir)
	require.NoError(t, err)
	theme, ok := NewValue[string](second, KeyTheme).Load()
	require.True(t, ok)
	assert.Equal(t, "dracula", theme)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("redis", "")
	assert.Error(t, err)
}
