package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// unlockScript deletes the lock only while it still holds our token, so a
// holder whose lock already expired cannot release another instance's lock.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisCache implements Service on a single redis instance. Keys are
// namespaced under the configured prefix.
type RedisCache struct {
	client *redis.Client
	prefix string

	// lock tokens held by this process, by wrapped key
	locks sync.Map
}

func NewRedisCache(opts ...RedisOption) (*RedisCache, error) {
	cfg := defaultRedisConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	return &RedisCache{client: client, prefix: cfg.Prefix}, nil
}

// Client returns the raw client for stores that need lists, sets or sorted sets.
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.Key(key), data, expiration).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, c.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return decode(data, dest)
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Unlink(ctx, c.keys(keys)...).Err()
}

// DeleteByPattern scans in batches; used to drop a country's news or table entries.
func (c *RedisCache) DeleteByPattern(ctx context.Context, pattern string) error {
	const batchSize = 200

	iter := c.client.Scan(ctx, 0, c.Key(pattern), batchSize).Iterator()
	batch := make([]string, 0, batchSize)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) < batchSize {
			continue
		}
		if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
			return err
		}
		batch = batch[:0]
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}
	return c.client.Unlink(ctx, batch...).Err()
}

func (c *RedisCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	n, err := c.client.Exists(ctx, c.keys(keys)...).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// TryLock takes key for ttl with a fresh owner token.
func (c *RedisCache) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	full := c.Key(key)
	token := uuid.NewString()
	ok, err := c.client.SetNX(ctx, full, token, ttl).Result()
	if err != nil || !ok {
		return false, err
	}
	c.locks.Store(full, token)
	return true, nil
}

// Unlock releases a lock taken by this process. Releasing a lock that was
// never taken here, or that expired and was re-taken elsewhere, is a no-op.
func (c *RedisCache) Unlock(ctx context.Context, key string) error {
	full := c.Key(key)
	token, ok := c.locks.LoadAndDelete(full)
	if !ok {
		return nil
	}
	return unlockScript.Run(ctx, c.client, []string{full}, token).Err()
}

// Key returns the fully prefixed key for callers using the raw client.
func (c *RedisCache) Key(key string) string {
	return c.prefix + ":" + key
}

func (c *RedisCache) keys(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = c.Key(k)
	}
	return out
}
