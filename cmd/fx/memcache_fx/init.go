package memcache_fx

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"tierly/internal/config"
	"tierly/internal/repositories"
	mem "tierly/pkg/memcache"
)

var Module = fx.Provide(provideCatalogCache)

const redisKeyPrefix = "tierly:"

func provideCatalogCache(lc fx.Lifecycle, cfg config.CatalogConfig, log *zap.Logger) (mem.Cache[*repositories.Catalog], error) {
	switch cfg.CacheBackend {
	case "redis":
		client, err := mem.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error { return client.Close() },
		})
		log.Info("catalog cache backed by redis", zap.Duration("ttl", cfg.CacheTTL))
		return mem.NewRedisStore[*repositories.Catalog](client, redisKeyPrefix, log.Named("cache")), nil
	case "none":
		return mem.Noop[*repositories.Catalog]{}, nil
	default:
		return mem.NewTTLStore[*repositories.Catalog](), nil
	}
}
