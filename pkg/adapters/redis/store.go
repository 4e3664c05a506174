package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/responsio/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.Medium using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for documents. Every Save refreshes it.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for documents.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "responsio:storage:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(namespace string) string {
	return s.prefix + namespace
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Probe writes and removes a test key.
func (s *Store) Probe(ctx context.Context) error {
	key := s.key("test")
	if err := s.client.Set(ctx, key, "test", 0).Err(); err != nil {
		return fmt.Errorf("failed to write probe key: %w", err)
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to remove probe key: %w", err)
	}
	return nil
}

// Save persists the document to Redis.
func (s *Store) Save(ctx context.Context, namespace string, data []byte) error {
	pipe := s.client.Pipeline()

	// 0 means no expiration.
	pipe.Set(ctx, s.key(namespace), data, s.ttl)

	// Score = Now + TTL, so List can prune lazily.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: namespace,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}

	return nil
}

// Load retrieves the document from Redis.
func (s *Store) Load(ctx context.Context, namespace string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key(namespace)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return val, nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, namespace string) error {
	pipe := s.client.Pipeline()

	pipe.Del(ctx, s.key(namespace))
	pipe.ZRem(ctx, s.indexKey(), namespace)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns the namespaces that have not expired.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())

	// Lazy cleanup: drop expired namespaces from the index.
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired documents: %w", err)
	}

	namespaces, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return namespaces, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
