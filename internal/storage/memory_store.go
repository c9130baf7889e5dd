package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps encoded snapshots in a map. Snapshots go through the
// same codec as the persistent stores so callers never share state.
type MemoryStore struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Save implements ModelStore
func (s *MemoryStore) Save(_ context.Context, snap *ModelSnapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	data, err := encodeSnapshot(snap, false)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[snap.ID] = data
	s.mu.Unlock()
	return nil
}

// Load implements ModelStore
func (s *MemoryStore) Load(_ context.Context, id string) (*ModelSnapshot, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	data, ok := s.data[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, id)
	}
	return decodeSnapshot(data)
}

// Delete implements ModelStore
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return fmt.Errorf("%w: %s", ErrModelNotFound, id)
	}
	delete(s.data, id)
	return nil
}

// List implements ModelStore
func (s *MemoryStore) List(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close implements ModelStore
func (s *MemoryStore) Close() error { return nil }
