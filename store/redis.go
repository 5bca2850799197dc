package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a StateStore backed by a Redis instance. Keys are namespaced
// under a prefix so multiple client instances can share one database.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis creates a Redis-backed store. An empty prefix defaults to
// "authcore:". A zero ttl stores values without expiry; when set, it should
// exceed the refresh token lifetime or persisted logins will silently lapse.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = "authcore:"
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) key(key string) string {
	return r.prefix + key
}

// Get implements StateStore.
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// Set implements StateStore.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.key(key), value, r.ttl).Err()
}

// Delete implements StateStore. Deleting absent keys is a no-op.
func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	namespaced := make([]string, len(keys))
	for i, k := range keys {
		namespaced[i] = r.key(k)
	}
	return r.client.Del(ctx, namespaced...).Err()
}
