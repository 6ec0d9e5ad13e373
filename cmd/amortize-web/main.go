package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"amortize/internal/backend"
	"amortize/internal/cache"
	"amortize/internal/cli"
	apphttp "amortize/internal/http"
	applog "amortize/internal/log"
	"amortize/internal/middleware/ratelimit"
	"amortize/internal/services"
)

const cleanupInterval = 5 * time.Minute

func main() {
	// the configured logger needs the config, so startup failures use the default one
	bootLogger := applog.New(applog.DefaultConfig())
	if err := cli.LoadEnvFile(); err != nil {
		bootLogger.Error("Failed to load .env file", applog.FieldError, err.Error())
		os.Exit(1)
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		bootLogger.Error("Configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid cache backend configuration", applog.FieldError, err.Error())
		os.Exit(1)
	}
	store, err := backend.NewFactory(logger).CreateBackend(context.Background(), bcfg)
	if err != nil {
		logger.Error("Failed to create cache backend", applog.FieldError, err.Error(), "backend", bcfg.Type)
		os.Exit(1)
	}

	checks := map[string]apphttp.ReadinessCheck{}
	if store.Check != nil {
		checks["cache"] = apphttp.ReadinessCheck(store.Check)
	}

	manager := cache.NewManager(logger)
	if store.Cleaner != nil {
		manager.Register(store.Cleaner)
	}

	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute})
	manager.Register(limiter)
	manager.StartCleanup(cleanupInterval)

	calc := services.NewCalculator(store.Cache, logger)

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:           ":" + cfg.Port,
		Calculator:     calc,
		Logger:         logger,
		Limiter:        limiter,
		Checks:         checks,
		TrustedProxies: cfg.TrustedProxies,
	})
	if err != nil {
		logger.Error("Failed to create HTTP server", applog.FieldError, err.Error())
		os.Exit(1)
	}

	_, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err.Error())
		}
		manager.Stop()
		if err := store.Cleanup(); err != nil {
			logger.Warn("Cache backend cleanup error", applog.FieldError, err.Error())
		}
	})

	logger.Info("Starting amortize server",
		"port", cfg.Port,
		"cache_backend", cfg.CacheBackend,
		"rate_limit_per_minute", cfg.RateLimitPerMinute,
		applog.FieldOperation, applog.OpStartup)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
