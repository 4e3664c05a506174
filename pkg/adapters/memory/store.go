package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/responsio/pkg/domain"
)

// Store implements ports.Medium in memory.
// Documents survive as long as the Store value does, so several storage.Store
// instances sharing one medium behave like successive page loads.
// Safe for concurrent use.
type Store struct {
	data map[string][]byte
	err  error
	mu   sync.RWMutex
}

// NewStore creates a new in-memory medium.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// Fail makes every subsequent operation return err, simulating a disabled or
// full medium. Fail(nil) restores normal behavior.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Probe writes and removes a test entry.
func (s *Store) Probe(ctx context.Context) error {
	if err := s.Save(ctx, "test", []byte("test")); err != nil {
		return err
	}
	return s.Delete(ctx, "test")
}

// Load retrieves a copy of the document.
func (s *Store) Load(ctx context.Context, namespace string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.err != nil {
		return nil, s.err
	}
	doc, ok := s.data[namespace]
	if !ok {
		return nil, domain.ErrNotFound
	}
	// Copy on read so callers can't mutate the stored document.
	return append([]byte(nil), doc...), nil
}

// Save stores a copy of the document.
func (s *Store) Save(ctx context.Context, namespace string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.data[namespace] = append([]byte(nil), data...)
	return nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	delete(s.data, namespace)
	return nil
}

// List returns the stored namespaces.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	namespaces := make([]string, 0, len(s.data))
	for ns := range s.data {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)
	return namespaces, nil
}
