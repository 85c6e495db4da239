// Package redis provides a cache.Cache implementation backed by Redis,
// letting cached provider responses survive process restarts and be shared
// between workers.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/patrickjm/yapl/cache"
	"github.com/patrickjm/yapl/core"
	backend "github.com/redis/go-redis/v9"
)

// Store implements cache.Cache using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the expiration for cached entries. Zero means no expiration.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for cached entries.
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
		prefix: "yapl:cache:",
		ttl:    0,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

type record struct {
	Messages []core.Message `json:"messages"`
	Metadata cache.Metadata `json:"metadata"`
}

// Get implements cache.Cache. A missing key is a miss, not an error.
func (s *Store) Get(ctx context.Context, key string) ([]core.Message, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached entry: %w", err)
	}
	return rec.Messages, true, nil
}

// Set implements cache.Cache.
func (s *Store) Set(ctx context.Context, key string, messages []core.Message, meta cache.Metadata) error {
	data, err := json.Marshal(record{Messages: messages, Metadata: meta})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := s.client.Set(ctx, s.key(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}
