// Package cache is a small JSON read-through cache over Redis. When no
// Redis address is configured every operation is a no-op miss, so callers
// never branch on whether caching is enabled.
package cache

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/casaantigua/anticuario/internal/config"
)

type Cache struct {
	client *redis.Client
	log    *zap.Logger
}

var Module = fx.Module("cache",
	fx.Provide(New),
)

func New(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *Cache {
	c := &Cache{log: log.Named("cache")}
	if cfg.RedisAddr == "" {
		return c
	}

	c.client = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := c.client.Ping(ctx).Err(); err != nil {
				// Degrade to uncached rather than refusing to start.
				log.Warn("redis unreachable, caching disabled", zap.Error(err))
				c.client = nil
			}
			return nil
		},
		OnStop: func(context.Context) error {
			if c.client == nil {
				return nil
			}
			return c.client.Close()
		},
	})
	return c
}

// Enabled reports whether a Redis backend is connected.
func (c *Cache) Enabled() bool { return c != nil && c.client != nil }

// Get returns the raw payload for key, with a hit flag.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if !c.Enabled() {
		return nil, false, nil
	}
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores payload under key for ttl.
func (c *Cache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

// Del drops key, typically after the underlying data changed.
func (c *Cache) Del(ctx context.Context, key string) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Del(ctx, key).Err()
}
