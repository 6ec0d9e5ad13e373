package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:               "8080",
		ShutdownTimeout:    15 * time.Second,
		LogLevel:           "info",
		LogFormat:          "text",
		CacheBackend:       "memory",
		CacheSize:          256,
		CacheTTL:           10 * time.Minute,
		RedisAddr:          "localhost:6379",
		RateLimitPerMinute: 120,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid memory cache config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "valid redis cache config",
			mutate: func(c *Config) {
				c.CacheBackend = "redis"
				c.RedisAddr = "redis:6379"
				c.RedisDB = 2
			},
			wantErr: false,
		},
		{
			name: "cache disabled ignores ttl",
			mutate: func(c *Config) {
				c.CacheBackend = "none"
				c.CacheTTL = 0
			},
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "verbose" },
			wantErr:     true,
			errorString: "invalid log level 'verbose'",
		},
		{
			name:        "invalid log format",
			mutate:      func(c *Config) { c.LogFormat = "xml" },
			wantErr:     true,
			errorString: "invalid log format 'xml': must be one of [text json]",
		},
		{
			name:        "invalid cache backend",
			mutate:      func(c *Config) { c.CacheBackend = "memcached" },
			wantErr:     true,
			errorString: "invalid cache backend 'memcached': must be one of [memory redis none]",
		},
		{
			name:        "memory cache size zero",
			mutate:      func(c *Config) { c.CacheSize = 0 },
			wantErr:     true,
			errorString: "invalid cache size 0",
		},
		{
			name:        "cache ttl too short",
			mutate:      func(c *Config) { c.CacheTTL = 10 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid cache TTL 10ms: must be at least 1 second",
		},
		{
			name: "redis backend missing address",
			mutate: func(c *Config) {
				c.CacheBackend = "redis"
				c.RedisAddr = ""
			},
			wantErr:     true,
			errorString: "Redis address cannot be empty when using redis cache backend",
		},
		{
			name: "redis backend address without port",
			mutate: func(c *Config) {
				c.CacheBackend = "redis"
				c.RedisAddr = "redis"
			},
			wantErr:     true,
			errorString: "invalid Redis address 'redis'",
		},
		{
			name: "redis db out of range",
			mutate: func(c *Config) {
				c.CacheBackend = "redis"
				c.RedisDB = 16
			},
			wantErr:     true,
			errorString: "invalid Redis DB 16: must be between 0 and 15",
		},
		{
			name:        "rate limit zero",
			mutate:      func(c *Config) { c.RateLimitPerMinute = 0 },
			wantErr:     true,
			errorString: "invalid rate limit 0",
		},
		{
			name:        "shutdown timeout too long",
			mutate:      func(c *Config) { c.ShutdownTimeout = time.Hour },
			wantErr:     true,
			errorString: "invalid shutdown timeout 1h0m0s",
		},
		{
			name:    "valid trusted proxies",
			mutate:  func(c *Config) { c.TrustedProxies = []string{"100.64.0.0/10", "fd00::/8"} },
			wantErr: false,
		},
		{
			name:        "invalid trusted proxy",
			mutate:      func(c *Config) { c.TrustedProxies = []string{"10.0.0.1"} },
			wantErr:     true,
			errorString: "invalid trusted proxy '10.0.0.1'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errorString) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.errorString)
			}
		})
	}
}

func TestConfig_ValidateCombinesErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "abc"
	cfg.LogFormat = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "invalid port") || !strings.Contains(err.Error(), "invalid log format") {
		t.Errorf("expected both problems listed, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, key := range []string{"PORT", "LOG_LEVEL", "LOG_FORMAT", "CACHE_BACKEND", "CACHE_SIZE", "CACHE_TTL", "RATE_LIMIT_PER_MINUTE", "TRUSTED_PROXIES"} {
			t.Setenv(key, "")
		}

		cfg := Load()

		if cfg.Port != "8080" {
			t.Errorf("Load() Port = %v, want 8080", cfg.Port)
		}
		if cfg.CacheBackend != "memory" {
			t.Errorf("Load() CacheBackend = %v, want memory", cfg.CacheBackend)
		}
		if cfg.CacheSize != 256 {
			t.Errorf("Load() CacheSize = %v, want 256", cfg.CacheSize)
		}
		if cfg.CacheTTL != 10*time.Minute {
			t.Errorf("Load() CacheTTL = %v, want 10m", cfg.CacheTTL)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("default config should validate, got %v", err)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("LOG_FORMAT", "json")
		t.Setenv("CACHE_BACKEND", "redis")
		t.Setenv("REDIS_ADDR", "cache:6380")
		t.Setenv("REDIS_DB", "3")
		t.Setenv("CACHE_TTL", "90s")
		t.Setenv("TRUSTED_PROXIES", " 100.64.0.0/10, ,fd00::/8")

		cfg := Load()

		if cfg.Port != "9090" {
			t.Errorf("Load() Port = %v, want 9090", cfg.Port)
		}
		if cfg.LogFormat != "json" {
			t.Errorf("Load() LogFormat = %v, want json", cfg.LogFormat)
		}
		if cfg.CacheBackend != "redis" || cfg.RedisAddr != "cache:6380" || cfg.RedisDB != 3 {
			t.Errorf("Load() redis settings = %v %v %v", cfg.CacheBackend, cfg.RedisAddr, cfg.RedisDB)
		}
		if cfg.CacheTTL != 90*time.Second {
			t.Errorf("Load() CacheTTL = %v, want 90s", cfg.CacheTTL)
		}
		if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[1] != "fd00::/8" {
			t.Errorf("Load() TrustedProxies = %v", cfg.TrustedProxies)
		}
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		t.Setenv("CACHE_SIZE", "invalid")
		t.Setenv("CACHE_TTL", "invalid")

		cfg := Load()

		if cfg.CacheSize != 256 {
			t.Errorf("Load() CacheSize = %v, want 256 (default for invalid input)", cfg.CacheSize)
		}
		if cfg.CacheTTL != 10*time.Minute {
			t.Errorf("Load() CacheTTL = %v, want 10m (default for invalid input)", cfg.CacheTTL)
		}
	})
}
