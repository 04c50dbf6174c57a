package history

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meysamhadeli/revai/gateway/models"
	"github.com/meysamhadeli/revai/project"
	"github.com/meysamhadeli/revai/storage"
	"github.com/sirupsen/logrus"
)

// MaxItems bounds the rolling log. Favorites are not exempt.
const MaxItems = 30

var ErrNotFound = errors.New("history item not found")

// Item is one completed analysis together with the input that produced it.
type Item struct {
	ID           string           `json:"id"`
	Timestamp    time.Time        `json:"timestamp"`
	Kind         models.Kind      `json:"kind"`
	ProjectLabel string           `json:"projectLabel"`
	Score        float64          `json:"score"`
	Result       models.Result    `json:"result"`
	IsFavorite   bool             `json:"isFavorite"`
	Snapshot     project.Snapshot `json:"snapshot"`
}

// Query narrows List output. Zero values match everything.
type Query struct {
	Since         time.Time
	FavoritesOnly bool
	Kind          models.Kind
}

// Store keeps items newest-first and writes the whole list on every mutation.
type Store struct {
	mu    sync.Mutex
	items []Item
	value *storage.Value[[]Item]
	now   func() time.Time
}

// NewStore loads the persisted list, starting empty when it is absent or corrupt.
func NewStore(store storage.Store) *Store {
	s := &Store{
		value: storage.NewValue[[]Item](store, storage.KeyReviewHistory),
		now:   time.Now,
	}
	items, _ := s.value.Load()
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	s.items = items
	return s
}

// Append records a successful analysis. Only review and audit kinds are accepted.
func (s *Store) Append(snapshot project.Snapshot, result models.Result) (Item, error) {
	if !result.Kind.Recorded() || !result.Valid() {
		return Item{}, fmt.Errorf("history: %s results are not recorded", result.Kind)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return Item{}, fmt.Errorf("history: failed to generate id: %w", err)
	}
	score, _ := result.Score()

	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UTC().Round(0)
	if len(s.items) > 0 && !ts.After(s.items[0].Timestamp) {
		ts = s.items[0].Timestamp.Add(time.Nanosecond)
	}

	item := Item{
		ID:           id.String(),
		Timestamp:    ts,
		Kind:         result.Kind,
		ProjectLabel: snapshot.Label(),
		Score:        score,
		Result:       result,
		Snapshot:     snapshot.Clone(),
	}

	items := append([]Item{item}, s.items...)
	if len(items) > MaxItems {
		for _, dropped := range items[MaxItems:] {
			logrus.WithFields(logrus.Fields{"id": dropped.ID, "favorite": dropped.IsFavorite}).Debug("history item truncated")
		}
		items = items[:MaxItems]
	}
	s.items = items
	return item, s.save()
}

// Remove filters the item out. Removing an unknown id is a no-op.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(s.items) {
		return nil
	}
	s.items = kept
	return s.save()
}

// ToggleFavorite flips the flag and reports the new value. Unknown ids are a no-op.
func (s *Store) ToggleFavorite(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].IsFavorite = !s.items[i].IsFavorite
			return s.items[i].IsFavorite, s.save()
		}
	}
	return false, nil
}

// Get returns the item with id. A unique prefix or suffix of at least 4 characters also matches;
// ids share their time-ordered prefix, so the CLI shows suffixes.
func (s *Store) Get(id string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match := -1
	for i, it := range s.items {
		if it.ID == id {
			return it, nil
		}
		if len(id) >= 4 && len(it.ID) > len(id) && (strings.HasPrefix(it.ID, id) || strings.HasSuffix(it.ID, id)) {
			if match >= 0 {
				return Item{}, fmt.Errorf("history: id '%s' is ambiguous", id)
			}
			match = i
		}
	}
	if match < 0 {
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.items[match], nil
}

// Restore returns the stored snapshot and result for replay. It never calls the model.
func (s *Store) Restore(id string) (project.Snapshot, models.Result, error) {
	item, err := s.Get(id)
	if err != nil {
		return project.Snapshot{}, models.Result{}, err
	}
	return item.Snapshot.Clone(), item.Result, nil
}

// List returns a copy of the items matching q, newest first.
func (s *Store) List(q Query) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		if q.FavoritesOnly && !it.IsFavorite {
			continue
		}
		if !q.Since.IsZero() && it.Timestamp.Before(q.Since) {
			continue
		}
		if q.Kind != "" && it.Kind != q.Kind {
			continue
		}
		out = append(out, it)
	}
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) save() error {
	if err := s.value.Save(s.items); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	return nil
}

// Clear drops every item, favorites included.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return s.value.Delete()
}
