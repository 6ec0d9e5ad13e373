// Package backend builds the schedule result cache selected by configuration.
package backend

import (
	"context"
	"fmt"
	"time"

	"amortize/internal/cache"
	"amortize/internal/core"
	applog "amortize/internal/log"
)

const startupPingTimeout = 3 * time.Second

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentCache),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend(config), nil
	case RedisBackend:
		return f.createRedisBackend(ctx, config), nil
	case NoneBackend:
		f.logger.Info("Schedule cache disabled", "backend", config.Type)
		return &BackendResult{Cleanup: func() error { return nil }}, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend(config Config) *BackendResult {
	lru := cache.NewLRUCache[core.ScheduleResult](config.Size, config.TTL)

	f.logger.Info("Initialized memory cache backend", "size", config.Size, "ttl", config.TTL.String())

	return &BackendResult{
		Cache:   lru,
		Cleaner: lru,
		Cleanup: func() error { return nil },
	}
}

// createRedisBackend never fails on an unreachable server: the cache then
// behaves as always-miss and the readiness check reports the outage.
func (f *DefaultFactory) createRedisBackend(ctx context.Context, config Config) *BackendResult {
	rc := cache.NewRedisCache[core.ScheduleResult](cache.RedisOptions{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
		Prefix:   config.RedisPrefix,
		TTL:      config.TTL,
	}, f.logger)

	pingCtx, cancel := context.WithTimeout(ctx, startupPingTimeout)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		f.logger.Warn("Redis not reachable at startup", "addr", config.RedisAddr, applog.FieldError, err.Error())
	} else {
		f.logger.Info("Initialized Redis cache backend", "addr", config.RedisAddr, "db", config.RedisDB)
	}

	return &BackendResult{
		Cache:   rc,
		Cleanup: rc.Close,
		Check:   rc.Ping,
	}
}
