package lock

import (
	"context"
	"sort"
	"sync"
)

// Locker serializes critical sections by key. Acquire blocks until every key
// is held and returns a release function. Keys are acquired in sorted order so
// overlapping key sets cannot deadlock each other.
type Locker interface {
	Acquire(ctx context.Context, keys ...string) (func(), error)
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// KeyedMutex is an in-process Locker backed by per-key mutexes.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*entry)}
}

func (k *KeyedMutex) Acquire(ctx context.Context, keys ...string) (func(), error) {
	sorted := dedupe(keys)

	held := make([]*entry, 0, len(sorted))
	for _, key := range sorted {
		e := k.retain(key)
		e.mu.Lock()
		held = append(held, e)
	}

	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
		}
		k.mu.Lock()
		for _, key := range sorted {
			if e, ok := k.entries[key]; ok {
				e.refs--
				if e.refs == 0 {
					delete(k.entries, key)
				}
			}
		}
		k.mu.Unlock()
	}
	return release, nil
}

func (k *KeyedMutex) retain(key string) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	return e
}

func dedupe(keys []string) []string {
	sorted := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		sorted = append(sorted, key)
	}
	sort.Strings(sorted)
	return sorted
}
