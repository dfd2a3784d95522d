package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ccsfp/clinic-api/internal/store"
)

// Store is an in-memory record store. It keeps insertion order per
// collection so listings are stable, and is safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

type collection struct {
	records map[uuid.UUID]store.Record
	order   []uuid.UUID
}

func NewStore() *Store {
	return &Store{collections: make(map[string]*collection)}
}

func (s *Store) Insert(ctx context.Context, name string, rec store.Record) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(name)
	id := uuid.New()
	stored := cloneRecord(rec)
	delete(stored, store.FieldID)
	c.records[id] = stored
	c.order = append(c.order, id)
	return id, nil
}

func (s *Store) Find(ctx context.Context, name string, filter store.Filter) ([]store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.collection(name)
	var out []store.Record
	for _, id := range c.order {
		rec := c.records[id]
		if filter.Matches(withID(rec, id)) {
			out = append(out, withID(rec, id))
		}
	}
	return out, nil
}

func (s *Store) FindOne(ctx context.Context, name string, filter store.Filter) (store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.collection(name)
	for _, id := range c.order {
		if rec := withID(c.records[id], id); filter.Matches(rec) {
			return rec, nil
		}
	}
	return nil, store.ErrNoRecord
}

func (s *Store) UpdateOne(ctx context.Context, name string, filter store.Filter, set store.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(name)
	for _, id := range c.order {
		rec := c.records[id]
		if !filter.Matches(withID(rec, id)) {
			continue
		}
		for k, v := range set {
			if k == store.FieldID {
				continue
			}
			rec[k] = v
		}
		return 1, nil
	}
	return 0, nil
}

func (s *Store) ReplaceOne(ctx context.Context, name string, filter store.Filter, rec store.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(name)
	for _, id := range c.order {
		if !filter.Matches(withID(c.records[id], id)) {
			continue
		}
		replacement := cloneRecord(rec)
		delete(replacement, store.FieldID)
		c.records[id] = replacement
		return 1, nil
	}
	return 0, nil
}

func (s *Store) DeleteOne(ctx context.Context, name string, filter store.Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(name)
	for i, id := range c.order {
		if !filter.Matches(withID(c.records[id], id)) {
			continue
		}
		delete(c.records, id)
		c.order = append(c.order[:i], c.order[i+1:]...)
		return 1, nil
	}
	return 0, nil
}

func (s *Store) DeleteMany(ctx context.Context, name string, filter store.Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(name)
	var deleted int64
	kept := c.order[:0]
	for _, id := range c.order {
		if filter.Matches(withID(c.records[id], id)) {
			delete(c.records, id)
			deleted++
			continue
		}
		kept = append(kept, id)
	}
	c.order = kept
	return deleted, nil
}

// collection lazily creates the named collection; callers hold s.mu.
func (s *Store) collection(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{records: make(map[uuid.UUID]store.Record)}
		s.collections[name] = c
	}
	return c
}

func withID(rec store.Record, id uuid.UUID) store.Record {
	out := cloneRecord(rec)
	out[store.FieldID] = store.Identifier(id)
	return out
}

func cloneRecord(rec store.Record) store.Record {
	out := make(store.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
