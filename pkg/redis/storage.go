package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// compareAndDelete removes KEYS[1] only when it still holds ARGV[1].
// Returns 1 when the key was deleted and 0 otherwise.
var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Storage is a TTL key-value store backed by Redis.
type Storage struct {
	db     redis.UniversalClient
	prefix string
}

// StorageOption configures a Storage.
type StorageOption func(*Storage)

// WithKeyPrefix namespaces every key written through the store.
func WithKeyPrefix(prefix string) StorageOption {
	return func(s *Storage) { s.prefix = prefix }
}

// NewStorage wraps a go-redis client.
func NewStorage(client redis.UniversalClient, opts ...StorageOption) *Storage {
	s := &Storage{db: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Storage) key(k string) (string, error) {
	if k == "" {
		return "", ErrEmptyKey
	}
	return s.prefix + k, nil
}

// SetWithTTL stores value under key, replacing any previous value. The key
// expires after ttl.
func (s *Storage) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}
	k, err := s.key(key)
	if err != nil {
		return err
	}
	if err := s.db.Set(ctx, k, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

// Get returns the value stored under key or ErrKeyNotFound.
func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	k, err := s.key(key)
	if err != nil {
		return "", err
	}
	val, err := s.db.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get key: %w", err)
	}
	return val, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	k, err := s.key(key)
	if err != nil {
		return err
	}
	if err := s.db.Del(ctx, k).Err(); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// Exists reports whether key currently holds a value.
func (s *Storage) Exists(ctx context.Context, key string) (bool, error) {
	k, err := s.key(key)
	if err != nil {
		return false, err
	}
	n, err := s.db.Exists(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check key: %w", err)
	}
	return n > 0, nil
}

// DeleteIfEquals atomically deletes key when its current value equals
// expected. It reports whether the delete happened.
func (s *Storage) DeleteIfEquals(ctx context.Context, key, expected string) (bool, error) {
	k, err := s.key(key)
	if err != nil {
		return false, err
	}
	n, err := compareAndDelete.Run(ctx, s.db, []string{k}, expected).Int()
	if err != nil {
		return false, fmt.Errorf("failed to compare and delete key: %w", err)
	}
	return n == 1, nil
}

// Close terminates the underlying client.
func (s *Storage) Close() error {
	return s.db.Close()
}
