package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Store persists saved searches in a single Redis hash.
type Store struct {
	client *redis.Client
	key    string
}

// NewStore creates a new Redis store. namespace defaults to DefaultNamespace.
func NewStore(client *redis.Client, namespace string) *Store {
	return &Store{
		client: client,
		key:    SearchesKey(namespace),
	}
}

// LoadAll retrieves every tag and its raw record from Redis
func (s *Store) LoadAll(ctx context.Context) (map[string][]byte, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load searches: %w", err)
	}

	out := make(map[string][]byte, len(fields))
	for tag, raw := range fields {
		out[tag] = []byte(raw)
	}
	return out, nil
}

// Put stores the raw record for tag, overwriting any previous value
func (s *Store) Put(ctx context.Context, tag string, raw []byte) error {
	if err := s.client.HSet(ctx, s.key, tag, raw).Err(); err != nil {
		return fmt.Errorf("failed to save search %q: %w", tag, err)
	}
	return nil
}

// Remove deletes tag from the hash. HDEL on a missing field is a no-op.
func (s *Store) Remove(ctx context.Context, tag string) error {
	if err := s.client.HDel(ctx, s.key, tag).Err(); err != nil {
		return fmt.Errorf("failed to delete search %q: %w", tag, err)
	}
	return nil
}

// Count returns the number of stored searches
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.client.HLen(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count searches: %w", err)
	}
	return n, nil
}

// Ping checks that Redis answers
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (s *Store) Close() error {
	return s.client.Close()
}
