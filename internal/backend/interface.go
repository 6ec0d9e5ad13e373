package backend

import (
	"context"

	"amortize/internal/cache"
	"amortize/internal/core"
)

// ScheduleCache is the store the calculator memoizes results in.
type ScheduleCache = cache.Cache[core.ScheduleResult]

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// CheckFunc reports whether the backend is reachable.
type CheckFunc func(ctx context.Context) error

// BackendResult contains the cache instance and its lifecycle hooks. Cache
// is nil for the "none" backend; Check is nil when there is nothing to probe.
type BackendResult struct {
	Cache   ScheduleCache
	Cleanup CleanupFunc
	Check   CheckFunc

	// Cleaner is set for caches that need periodic expiry sweeps.
	Cleaner cache.Cleaner
}

// Factory creates cache backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	RedisBackend  BackendType = "redis"
	NoneBackend   BackendType = "none"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, RedisBackend, NoneBackend:
		return true
	default:
		return false
	}
}
