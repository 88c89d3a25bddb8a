package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps session token hashes in Redis under a per-user key with
// a TTL, so an idle session expires on its own.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps an existing Redis client. Returns nil when the
// client is nil so callers can pass the result straight to NewValidator.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	if rdb == nil {
		return nil
	}
	return &RedisStore{rdb: rdb}
}

func sessionKey(username string) string {
	return "session:" + username
}

// Get returns the stored token hash for username, "" when none exists.
func (s *RedisStore) Get(ctx context.Context, username string) (string, error) {
	val, err := s.rdb.Get(ctx, sessionKey(username)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

// Save stores the token hash with the given TTL, replacing any previous
// session for the user.
func (s *RedisStore) Save(ctx context.Context, username, hash string, ttl time.Duration) error {
	return s.rdb.Set(ctx, sessionKey(username), hash, ttl).Err()
}

// Delete removes the user's session entry.
func (s *RedisStore) Delete(ctx context.Context, username string) error {
	return s.rdb.Del(ctx, sessionKey(username)).Err()
}
