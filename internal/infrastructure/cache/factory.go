package cache

import (
	"github.com/armory/backend/internal/domain/shared"
	"github.com/armory/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StoreFactory creates the idempotency store and status cache based on
// configuration, falling back from Redis to in-process implementations when
// Redis is unreachable. Both are optimizations over durable state, so a
// degraded single-node fallback is preferable to refusing to start.
type StoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(cfg config.RedisConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateIdempotencyStore creates an idempotency store, preferring Redis
func (f *StoreFactory) CreateIdempotencyStore() (shared.IdempotencyStore, error) {
	store, err := NewRedisIdempotencyStore(f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis idempotency store",
			zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, err
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store",
		zap.String("addr", f.redisConfig.Addr()),
		zap.Error(err))
	return NewInMemoryIdempotencyStore(), nil
}

// CreateStatusCache creates a status read-model cache, preferring Redis
func (f *StoreFactory) CreateStatusCache() (shared.StatusCache, error) {
	cache, err := NewRedisStatusCache(f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis status cache",
			zap.String("addr", f.redisConfig.Addr()))
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, err
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory status cache",
		zap.String("addr", f.redisConfig.Addr()),
		zap.Error(err))
	return NewInMemoryStatusCache(), nil
}
