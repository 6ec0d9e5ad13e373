package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	applog "amortize/internal/log"
)

// RedisCache stores JSON-encoded values in Redis so that several server
// instances share one set of computed schedules. Redis failures degrade to
// cache misses.
type RedisCache[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *applog.Logger
}

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// NewRedisCache connects to Redis. The connection is lazy; call Ping to
// check reachability.
func NewRedisCache[T any](opts RedisOptions, logger *applog.Logger) *RedisCache[T] {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &RedisCache[T]{
		client: rdb,
		prefix: opts.Prefix,
		ttl:    opts.TTL,
		logger: logger.WithComponent(applog.ComponentCache),
	}
}

func (r *RedisCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.WarnContext(ctx, "Redis get failed",
				applog.FieldCacheKey, key, applog.FieldOperation, applog.OpCacheGet, applog.FieldError, err.Error())
		}
		return zero, false
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		r.logger.WarnContext(ctx, "Discarding undecodable cache entry",
			applog.FieldCacheKey, key, applog.FieldError, err.Error())
		return zero, false
	}
	return v, true
}

func (r *RedisCache[T]) Set(ctx context.Context, key string, data T) {
	raw, err := json.Marshal(data)
	if err != nil {
		r.logger.WarnContext(ctx, "Cannot encode cache entry",
			applog.FieldCacheKey, key, applog.FieldError, err.Error())
		return
	}
	if err := r.client.Set(ctx, r.prefix+key, raw, r.ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "Redis set failed",
			applog.FieldCacheKey, key, applog.FieldOperation, applog.OpCacheSet, applog.FieldError, err.Error())
	}
}

func (r *RedisCache[T]) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		r.logger.WarnContext(ctx, "Redis delete failed", applog.FieldCacheKey, key, applog.FieldError, err.Error())
	}
}

// Ping reports whether Redis answers.
func (r *RedisCache[T]) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (r *RedisCache[T]) Close() error {
	return r.client.Close()
}
