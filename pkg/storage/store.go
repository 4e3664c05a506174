package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/responsio/pkg/domain"
	"github.com/aretw0/responsio/pkg/ports"
)

// missing marks an absent path during lookups.
var missing any = new(byte)

// Strategy names the backing variant selected for a Store.
type Strategy string

const (
	// Durable writes every change through to the medium.
	Durable Strategy = "durable"

	// Volatile keeps the tree for the process lifetime only.
	Volatile Strategy = "volatile"
)

// Store implements ports.KeyValueStore over a namespaced JSON tree.
// The tree is read once at construction; reads are served from memory and every
// Set writes the whole tree back through the medium while the strategy is Durable.
// Safe for concurrent use.
type Store struct {
	medium    ports.Medium
	namespace string
	timeout   time.Duration
	logger    *slog.Logger

	mu       sync.RWMutex
	tree     map[string]any
	strategy Strategy
}

// Option defines a functional option for configuring the Store.
type Option func(*Store)

// WithNamespace sets the key the document is stored under (default: domain.Namespace).
func WithNamespace(namespace string) Option {
	return func(s *Store) {
		s.namespace = namespace
	}
}

// WithLogger sets a custom structured logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithTimeout bounds each medium access (default: 5s).
func WithTimeout(timeout time.Duration) Option {
	return func(s *Store) {
		s.timeout = timeout
	}
}

// New selects the backing strategy by probing medium and loads the persisted tree.
// A nil medium, a failed probe or an unreadable document selects the Volatile strategy.
// The choice is permanent: a Volatile store never retries the medium.
func New(ctx context.Context, medium ports.Medium, opts ...Option) *Store {
	s := &Store{
		medium:    medium,
		namespace: domain.Namespace,
		timeout:   5 * time.Second,
		tree:      make(map[string]any),
		strategy:  Volatile,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if medium == nil {
		return s
	}

	if err := s.probe(ctx); err != nil {
		s.logger.Warn("storage medium unavailable, using volatile storage", "err", err)
		return s
	}

	tree, err := s.load(ctx)
	if err != nil {
		s.logger.Warn("failed to read persisted document, using volatile storage", "err", err)
		return s
	}

	s.tree = tree
	s.strategy = Durable
	return s
}

// NewVolatile creates a store that never touches a medium.
func NewVolatile(opts ...Option) *Store {
	return New(context.Background(), nil, opts...)
}

func (s *Store) probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.medium.Probe(ctx)
}

func (s *Store) load(ctx context.Context) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.medium.Load(ctx, s.namespace)
	if errors.Is(err, domain.ErrNotFound) {
		return make(map[string]any), nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return make(map[string]any), nil
	}

	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	if tree == nil {
		tree = make(map[string]any)
	}
	return tree, nil
}

// Strategy reports the backing variant currently in use.
func (s *Store) Strategy() Strategy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.strategy
}

// Get returns the value at the dotted name, or def if any step is missing.
func (s *Store) Get(name string, def any) any {
	return s.GetPath(ParsePath(name), def)
}

// GetPath returns the value at path, or def if any step is missing.
// The returned value is a copy; mutating it does not affect the store.
func (s *Store) GetPath(path Path, def any) any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := lookup(s.tree, path, missing)
	if v == missing {
		return def
	}
	return clone(v)
}

// Set assigns value at the dotted name.
func (s *Store) Set(name string, value any) error {
	return s.SetPath(ParsePath(name), value)
}

// SetPath assigns value at path, creating intermediate mappings as needed.
// value must be JSON-serializable. The in-memory tree keeps a copy of value as given;
// JSON only applies when the tree is written to or read from the medium.
// An empty path replaces the whole tree and therefore requires a string-keyed map.
func (s *Store) SetPath(path Path, value any) error {
	if _, err := json.Marshal(value); err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}
	value = clone(value)

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(path) == 0 {
		tree, ok := mapping(value)
		if !ok {
			return domain.ErrEmptyPath
		}
		s.tree = tree
	} else {
		assign(s.tree, path, value)
	}

	if s.strategy == Durable {
		s.flush()
	}
	return nil
}

// flush writes the whole tree through the medium. Must hold s.mu.
// A failing write permanently downgrades the store to the volatile strategy.
func (s *Store) flush() {
	data, err := json.Marshal(s.tree)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		err = s.medium.Save(ctx, s.namespace, data)
		cancel()
	}
	if err != nil {
		s.logger.Warn("storage medium write failed, switching to volatile storage", "err", err)
		s.strategy = Volatile
	}
}

// Snapshot returns a copy of the whole tree.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.tree).(map[string]any)
}

// clone deep-copies the containers a caller is likely to keep a reference to.
// Other values are shared.
func clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = clone(e)
		}
		return m
	case []any:
		l := make([]any, len(t))
		for i, e := range t {
			l[i] = clone(e)
		}
		return l
	case []string:
		return append([]string{}, t...)
	case map[string]string:
		m := make(map[string]string, len(t))
		for k, e := range t {
			m[k] = e
		}
		return m
	default:
		return v
	}
}
