package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keySession = "session:%s:%s"

// RedisStore keeps one browsing session's slots in redis. Every write refreshes
// the slot's TTL, so a slot lives as long as the session keeps writing to it.
type RedisStore struct {
	client    *redis.Client
	sessionID string
	ttl       time.Duration
}

func NewRedisStore(client *redis.Client, sessionID string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, sessionID: sessionID, ttl: ttl}
}

func (r *RedisStore) key(key string) string {
	return fmt.Sprintf(keySession, r.sessionID, key)
}

func (r *RedisStore) Get(c context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(c, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed getting key=%s from redis with error=%w", key, err)
	}
	return value, true, nil
}

func (r *RedisStore) Set(c context.Context, key string, value string) error {
	err := r.client.Set(c, r.key(key), value, r.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed setting key=%s to redis with error=%w", key, err)
	}
	return nil
}
