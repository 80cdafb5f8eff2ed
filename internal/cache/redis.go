package cache

import (
	"context"
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/xrpbridge/bridge-api-service/internal/config"
)

const (
	dialTimeout = 5 * time.Second
	maxIdle     = 5
	idleTimeout = 4 * time.Minute
)

type RedisCache struct {
	pool *redis.Pool
}

func NewRedisCache(cfg *config.RedisConfig) *RedisCache {
	opts := []redis.DialOption{
		redis.DialConnectTimeout(dialTimeout),
		redis.DialReadTimeout(dialTimeout),
		redis.DialWriteTimeout(dialTimeout),
	}
	if cfg.Password != "" {
		opts = append(opts, redis.DialPassword(cfg.Password))
	}
	addr := cfg.Addr()
	return &RedisCache{
		pool: &redis.Pool{
			MaxIdle:     maxIdle,
			IdleTimeout: idleTimeout,
			DialContext: func(ctx context.Context) (redis.Conn, error) {
				return redis.DialContext(ctx, "tcp", addr, opts...)
			},
		},
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		return "", false, err
	}
	defer conn.Close()

	value, err := redis.String(redis.DoContext(conn, ctx, "GET", key))
	if errors.Is(err, redis.ErrNil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = redis.DoContext(conn, ctx, "SET", key, value, "PX", ttl.Milliseconds())
	return err
}

func (c *RedisCache) Ping(ctx context.Context) error {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = redis.String(redis.DoContext(conn, ctx, "PING"))
	return err
}

func (c *RedisCache) Close() error {
	return c.pool.Close()
}
