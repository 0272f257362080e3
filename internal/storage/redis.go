package storage

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

var _ KeyValueStore = (*RedisStore)(nil)

// RedisStore keeps snapshots as plain Redis strings.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration // 0 means no expiry
}

// NewRedisClient opens a client and pings it.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, wrapErr(BackendRedis, "ping", addr, err)
	}
	return client, nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, wrapErr(BackendRedis, "get", key, err)
	}
	return val, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	return wrapErr(BackendRedis, "set", key, r.client.Set(ctx, key, value, r.ttl).Err())
}

func (r *RedisStore) Remove(ctx context.Context, key string) error {
	return wrapErr(BackendRedis, "remove", key, r.client.Del(ctx, key).Err())
}
