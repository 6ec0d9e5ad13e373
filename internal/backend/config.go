package backend

import (
	"fmt"
	"time"

	"amortize/internal/config"
)

// Config holds configuration for backend creation
type Config struct {
	Type BackendType
	TTL  time.Duration

	// Memory backend specific
	Size int

	// Redis specific
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.CacheBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.CacheBackend)
	}

	return Config{
		Type: backendType,
		TTL:  appConfig.CacheTTL,
		Size: appConfig.CacheSize,

		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
		RedisPrefix:   "amortize:",
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case MemoryBackend:
		if c.Size < 1 {
			return fmt.Errorf("memory backend needs a positive size, got %d", c.Size)
		}
		if c.TTL <= 0 {
			return fmt.Errorf("memory backend needs a positive TTL, got %v", c.TTL)
		}
	case RedisBackend:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis address is required for redis backend")
		}
	}
	return nil
}
