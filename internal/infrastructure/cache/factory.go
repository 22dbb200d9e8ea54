package cache

import (
	"fmt"

	"github.com/etiqueta/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// LookupCacheFactory creates lookup caches based on configuration
type LookupCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LookupCacheFactoryOption is a functional option for configuring the factory
type LookupCacheFactoryOption func(*LookupCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LookupCacheFactoryOption {
	return func(f *LookupCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache when Redis is unavailable.
// Default is true (allow fallback).
func WithInMemoryFallback(allow bool) LookupCacheFactoryOption {
	return func(f *LookupCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLookupCacheFactory creates a new factory
func NewLookupCacheFactory(cfg config.RedisConfig, opts ...LookupCacheFactoryOption) *LookupCacheFactory {
	f := &LookupCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache creates a Redis-based lookup cache
func (f *LookupCacheFactory) CreateRedisCache() (LookupCache, error) {
	c, err := NewRedisLookupCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis lookup cache: %w", err)
	}
	return c, nil
}

// CreateCache returns a Redis cache when Redis is enabled and reachable,
// otherwise an in-memory cache if fallback is allowed
func (f *LookupCacheFactory) CreateCache() (LookupCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory lookup cache")
		return NewInMemoryLookupCache(), nil
	}

	c, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis lookup cache", zap.String("addr", f.redisConfig.Addr()))
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for lookup cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory lookup cache",
		zap.Error(err),
	)
	return NewInMemoryLookupCache(), nil
}
