package blacklist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the production revocation list. Redis key expiry is the
// cleanup mechanism; no reaper is needed.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore wires a store over client. prefix namespaces every key.
func NewRedisStore(client redis.UniversalClient, prefix string) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if prefix == "" {
		return nil, errors.New("key prefix must not be empty")
	}
	return &RedisStore{redis: client, prefix: prefix}, nil
}

func (s *RedisStore) key(token string) string {
	return s.prefix + ":" + hashKey(token)
}

// Add marks the token revoked for its remaining lifetime.
func (s *RedisStore) Add(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, s.key(token), 1, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Contains reports whether the token is currently revoked.
func (s *RedisStore) Contains(ctx context.Context, token string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}
