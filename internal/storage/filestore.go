package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// fileDocument is the on-disk shape of the JSON store: the item list plus
// valuation history keyed by item id.
type fileDocument struct {
	Items      []Item                 `json:"items"`
	Valuations map[string][]Valuation `json:"valuations,omitempty"`
}

// FileStore keeps the whole inventory in a single JSON document. It is the
// default backend and covers a personal inventory comfortably; heavier use
// should configure PostgreSQL instead.
type FileStore struct {
	path string

	mu  sync.RWMutex
	doc fileDocument
}

// NewFileStore loads (or lazily creates) the JSON store at path.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path: path,
		doc:  fileDocument{Items: []Item{}, Valuations: map[string][]Valuation{}},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read inventory file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(data, &s.doc); err != nil {
		return nil, fmt.Errorf("parse inventory file: %w", err)
	}
	if s.doc.Items == nil {
		s.doc.Items = []Item{}
	}
	if s.doc.Valuations == nil {
		s.doc.Valuations = map[string][]Valuation{}
	}
	return s, nil
}

// Close is a no-op: every mutation is flushed as it happens.
func (s *FileStore) Close() {}

// save writes the document atomically. Callers must hold the write lock.
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal inventory: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create inventory dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write inventory file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace inventory file: %w", err)
	}
	return nil
}

func (s *FileStore) indexOf(id string) int {
	for i := range s.doc.Items {
		if s.doc.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// AddItem appends a new item, minting an id and timestamps as needed.
func (s *FileStore) AddItem(_ context.Context, item Item) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepareNewItem(&item)
	s.doc.Items = append(s.doc.Items, item)

	if err := s.save(); err != nil {
		s.doc.Items = s.doc.Items[:len(s.doc.Items)-1]
		return Item{}, err
	}
	return item, nil
}

// GetItem fetches one item by id.
func (s *FileStore) GetItem(_ context.Context, id string) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return Item{}, ErrItemNotFound
	}
	return s.doc.Items[idx], nil
}

// ListItems returns every item in insertion order.
func (s *FileStore) ListItems(_ context.Context) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]Item, len(s.doc.Items))
	copy(items, s.doc.Items)
	return items, nil
}

// UpdateItem replaces a stored item's mutable fields.
func (s *FileStore) UpdateItem(_ context.Context, item Item) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(item.ID)
	if idx < 0 {
		return Item{}, ErrItemNotFound
	}

	item.CreatedAt = s.doc.Items[idx].CreatedAt
	item.UpdatedAt = time.Now().UTC()
	previous := s.doc.Items[idx]
	s.doc.Items[idx] = item

	if err := s.save(); err != nil {
		s.doc.Items[idx] = previous
		return Item{}, err
	}
	return item, nil
}

// DeleteItem removes an item and its valuation history.
func (s *FileStore) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrItemNotFound
	}

	s.doc.Items = append(s.doc.Items[:idx], s.doc.Items[idx+1:]...)
	delete(s.doc.Valuations, id)
	return s.save()
}

// AppendValuation records one pricing snapshot.
func (s *FileStore) AppendValuation(_ context.Context, v Valuation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(v.ItemID) < 0 {
		return ErrItemNotFound
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	s.doc.Valuations[v.ItemID] = append(s.doc.Valuations[v.ItemID], v)
	return s.save()
}

// ListValuations returns the most recent snapshots for one item.
func (s *FileStore) ListValuations(_ context.Context, itemID string, limit int) ([]Valuation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.doc.Valuations[itemID]
	out := make([]Valuation, len(history))
	copy(out, history)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListValuationsBetween returns snapshots inside [from, to), oldest first.
func (s *FileStore) ListValuationsBetween(_ context.Context, itemID string, from, to time.Time) ([]Valuation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Valuation, 0)
	for _, v := range s.doc.Valuations[itemID] {
		if v.CreatedAt.Before(from) || !v.CreatedAt.Before(to) {
			continue
		}
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

var _ Store = (*FileStore)(nil)
