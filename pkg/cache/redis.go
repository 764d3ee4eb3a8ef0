package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store using Redis. Entries are stored as a JSON
// envelope without a server-side expiry: freshness is computed client-side
// from FetchedAt, so stale entries stay available for degraded serving
// across process restarts.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed cache store.
func NewRedisStore(opts ...RedisOption) (*RedisStore, error) {
	cfg := &RedisConfig{
		Host:         "localhost",
		Port:         6379,
		DB:           0,
		PoolSize:     10,
		PoolTimeout:  30 * time.Second,
		MinIdleConns: 5,
		Prefix:       "marketpulse",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		PoolTimeout:  cfg.PoolTimeout,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{client: client, prefix: cfg.Prefix}, nil
}

func (rs *RedisStore) Get(ctx context.Context, key string) (Entry, error) {
	data, err := rs.client.Get(ctx, rs.wrapKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, ErrCacheMiss
		}
		return Entry{}, err
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("decode entry: %w", err)
	}
	return e, nil
}

func (rs *RedisStore) Put(ctx context.Context, key string, payload interface{}, ttl time.Duration) error {
	b, err := marshalPayload(payload)
	if err != nil {
		return err
	}

	data, err := json.Marshal(Entry{Payload: b, FetchedAt: time.Now(), TTL: ttl})
	if err != nil {
		return err
	}
	return rs.client.Set(ctx, rs.wrapKey(key), data, 0).Err()
}

func (rs *RedisStore) Delete(ctx context.Context, keys ...string) error {
	wrapped := make([]string, 0, len(keys))
	for _, k := range keys {
		wrapped = append(wrapped, rs.wrapKey(k))
	}
	return rs.client.Unlink(ctx, wrapped...).Err()
}

// Close closes the Redis connection.
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}

func (rs *RedisStore) wrapKey(key string) string {
	if rs.prefix == "" {
		return key
	}
	return rs.prefix + ":" + key
}
