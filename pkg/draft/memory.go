package draft

import (
	"context"
	"sync"
)

// MemoryStore keeps drafts in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Load(ctx context.Context, name string) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	raw, ok := s.data[Key(name)]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	value, err := decode(raw)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *MemoryStore) Save(ctx context.Context, name string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := encode(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[Key(name)] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.data, Key(name))
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// Raw returns the stored JSON for name, for inspection in tests.
func (s *MemoryStore) Raw(name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[Key(name)]
	return append([]byte(nil), raw...), ok
}
