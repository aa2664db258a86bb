package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/flume/pkg/domain"
)

// Store implements ports.SnapshotStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.DiagramState
	aux  map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.DiagramState),
		aux:  make(map[string][]byte),
	}
}

// Save persists a deep copy of the snapshot so the caller cannot
// mutate stored state through retained pointers.
func (s *Store) Save(ctx context.Context, diagramID string, state *domain.DiagramState) error {
	copied := state.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[diagramID] = copied
	return nil
}

// Load retrieves a copy of the snapshot.
func (s *Store) Load(ctx context.Context, diagramID string) (*domain.DiagramState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.data[diagramID]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return state.Clone(), nil
}

// Delete removes the snapshot and its auxiliary entries.
func (s *Store) Delete(ctx context.Context, diagramID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, diagramID)
	for key := range s.aux {
		if auxOwner(key) == diagramID {
			delete(s.aux, key)
		}
	}
	return nil
}

// List returns every stored diagram ID in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// SaveAux stores one auxiliary entry for a diagram.
func (s *Store) SaveAux(ctx context.Context, diagramID, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(value))
	copy(buf, value)
	s.aux[auxKey(diagramID, key)] = buf
	return nil
}

// LoadAux retrieves one auxiliary entry.
func (s *Store) LoadAux(ctx context.Context, diagramID, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.aux[auxKey(diagramID, key)]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	buf := make([]byte, len(value))
	copy(buf, value)
	return buf, nil
}

func auxKey(diagramID, key string) string {
	return diagramID + "\x00" + key
}

func auxOwner(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == 0 {
			return key[:i]
		}
	}
	return key
}
