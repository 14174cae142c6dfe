package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionKeyPrefix is the Redis key prefix for sessions
const SessionKeyPrefix = "session:"

// RedisSessionStore keeps sessions in Redis with key expiry doing the work
// of the sliding timeout.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	return s.client.Set(ctx, SessionKeyPrefix+token, userID, ttl).Err()
}

func (s *RedisSessionStore) Touch(ctx context.Context, token string, ttl time.Duration) (string, error) {
	key := SessionKeyPrefix + token
	userID, err := s.client.GetEx(ctx, key, ttl).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return userID, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, SessionKeyPrefix+token).Err()
}
