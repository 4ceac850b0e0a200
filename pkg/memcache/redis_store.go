package mem

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisOpTimeout = 500 * time.Millisecond

// RedisStore shares cached values across processes. Values are stored as JSON.
// Redis failures are treated as cache misses.
type RedisStore[V any] struct {
	client *redis.Client
	prefix string
	log    *zap.Logger
}

func NewRedisStore[V any](client *redis.Client, prefix string, log *zap.Logger) *RedisStore[V] {
	return &RedisStore[V]{client: client, prefix: prefix, log: log}
}

func (s *RedisStore[V]) Get(key string) (V, bool) {
	var zero V
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("redis cache get failed", zap.String("key", key), zap.Error(err))
		}
		return zero, false
	}

	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		s.log.Warn("redis cache decode failed", zap.String("key", key), zap.Error(err))
		return zero, false
	}
	return v, true
}

func (s *RedisStore[V]) Put(key string, value V, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.log.Warn("redis cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := s.client.Set(ctx, s.prefix+key, raw, ttl).Err(); err != nil {
		s.log.Warn("redis cache put failed", zap.String("key", key), zap.Error(err))
	}
}

// ConnectRedis parses url and pings the server once.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	c := redis.NewClient(opts)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}
