// Package history keeps the ordered list of rendered chat fragments.
package history

import (
	"fmt"
	"sync"

	"github.com/aretw0/responsio/pkg/domain"
	"github.com/aretw0/responsio/pkg/ports"
)

// Log is an append-only sequence of fragments persisted under domain.KeyHistory.
// Append is a read-modify-write of the whole list, serialized by a mutex.
type Log struct {
	store ports.KeyValueStore
	mu    sync.Mutex
}

// New creates a Log on top of store.
func New(store ports.KeyValueStore) *Log {
	return &Log{store: store}
}

// Append adds fragment at the end of the log.
func (l *Log) Append(fragment string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := l.read()
	entries = append(entries, fragment)
	if err := l.store.Set(domain.KeyHistory, entries); err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

// All returns every fragment in insertion order.
func (l *Log) All() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read()
}

// Len returns the number of fragments.
func (l *Log) Len() int {
	return len(l.All())
}

// Clear empties the log.
func (l *Log) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Set(domain.KeyHistory, []string{}); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// read decodes the stored list. Non-string entries are skipped.
func (l *Log) read() []string {
	entries := []string{}
	switch raw := l.store.Get(domain.KeyHistory, nil).(type) {
	case []any:
		for _, e := range raw {
			if s, ok := e.(string); ok {
				entries = append(entries, s)
			}
		}
	case []string:
		entries = append(entries, raw...)
	}
	return entries
}
