package codes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheKey is the Redis key holding the serialized Config.
const CacheKey = "docsys:codes:config"

// GenerationKey counts invalidations. A snapshot loaded under one
// generation is only written while that generation is still current.
const GenerationKey = CacheKey + ":gen"

var setIfCurrent = redis.NewScript(`
if (redis.call("GET", KEYS[2]) or "0") ~= ARGV[1] then
	return false
end
if tonumber(ARGV[3]) > 0 then
	return redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
end
return redis.call("SET", KEYS[1], ARGV[2])
`)

// Cache stores Config snapshots in Redis. A Cache with a nil client always
// misses.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached snapshot, or nil on a miss.
func (c *Cache) Get(ctx context.Context) (*Config, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, CacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cached config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode cached config: %w", err)
	}
	return &cfg, nil
}

func (c *Cache) Set(ctx context.Context, cfg *Config) error {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := c.client.Set(ctx, CacheKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("write cached config: %w", err)
	}
	return nil
}

// Generation returns the current invalidation count. Read it before loading
// a snapshot and pass it to SetIfCurrent.
func (c *Cache) Generation(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}

	gen, err := c.client.Get(ctx, GenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read cache generation: %w", err)
	}
	return gen, nil
}

// SetIfCurrent stores cfg only when no invalidation happened since gen was
// read. It reports whether the snapshot was written.
func (c *Cache) SetIfCurrent(ctx context.Context, cfg *Config, gen int64) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return false, fmt.Errorf("encode config: %w", err)
	}

	err = setIfCurrent.Run(ctx, c.client,
		[]string{CacheKey, GenerationKey},
		strconv.FormatInt(gen, 10), data, c.ttl.Milliseconds()).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("write cached config: %w", err)
	}
	return true, nil
}

// Invalidate drops the snapshot and advances the generation so loads that
// started earlier cannot write their result back.
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}

	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, CacheKey)
		p.Incr(ctx, GenerationKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate cached config: %w", err)
	}
	return nil
}
