package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache — кэш подсказок поверх go-redis.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisCache подключается к Redis. Пустой адрес означает, что кэш выключен: вернётся nil без ошибки.
func NewRedisCache(ctx context.Context, addr string) (*RedisCache, error) {
	if addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &RedisCache{rdb: rdb}, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, value, ttl).Err()
}

func (r *RedisCache) Close() error {
	return r.rdb.Close()
}

func (c *Client) fromCache(ctx context.Context, key string) ([]Party, bool) {
	if c.cache == nil {
		return nil, false
	}
	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("suggestion cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var parties []Party
	if err := json.Unmarshal(raw, &parties); err != nil {
		return nil, false
	}
	if parties == nil {
		parties = []Party{}
	}
	return parties, true
}

func (c *Client) toCache(ctx context.Context, key string, parties []Party) {
	if c.cache == nil || c.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(parties)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("suggestion cache write failed")
	}
}
