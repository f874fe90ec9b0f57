// Package cache owns the Redis client used for read-through caching and
// ties its startup ping and shutdown close to the lifecycle coordinator.
package cache

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tavtun/docsys/pkg/lifecycle"
)

// System exposes the Redis client and the configured entry TTL.
type System interface {
	Client() *redis.Client
	TTL() time.Duration
	Ready() bool
	Start(lc *lifecycle.Coordinator) error
}

type redisCache struct {
	client      *redis.Client
	ttl         time.Duration
	dialTimeout time.Duration
	logger      *slog.Logger
	ready       atomic.Bool
}

// New builds the client without connecting.
func New(cfg *Config, logger *slog.Logger) System {
	client := redis.NewClient(&redis.Options{
		Addr:                  cfg.Addr,
		Password:              cfg.Password,
		DB:                    cfg.DB,
		DialTimeout:           cfg.DialTimeoutDuration(),
		ContextTimeoutEnabled: true,
	})

	return &redisCache{
		client:      client,
		ttl:         cfg.TTLDuration(),
		dialTimeout: cfg.DialTimeoutDuration(),
		logger:      logger.With("system", "cache"),
	}
}

func (c *redisCache) Client() *redis.Client { return c.client }

func (c *redisCache) TTL() time.Duration { return c.ttl }

func (c *redisCache) Ready() bool { return c.ready.Load() }

func (c *redisCache) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		ctx, cancel := context.WithTimeout(lc.Context(), c.dialTimeout)
		defer cancel()

		if err := c.client.Ping(ctx).Err(); err != nil {
			c.logger.Warn("cache unavailable, continuing without it", "error", err)
			return
		}

		c.ready.Store(true)
		c.logger.Info("cache connection established", "addr", c.client.Options().Addr)
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		c.ready.Store(false)

		if err := c.client.Close(); err != nil {
			c.logger.Error("cache close failed", "error", err)
			return
		}
		c.logger.Info("cache connection closed")
	})

	return nil
}
