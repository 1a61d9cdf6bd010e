package cache

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/malnatis/order-export/internal/domain/shared"
	"github.com/malnatis/order-export/internal/infrastructure/config"
)

// ProcessedStoreFactory creates processed-order stores based on configuration
type ProcessedStoreFactory struct {
	redisConfig           config.RedisConfig
	retention             time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ProcessedStoreFactoryOption is a functional option for configuring the factory
type ProcessedStoreFactoryOption func(*ProcessedStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ProcessedStoreFactoryOption {
	return func(f *ProcessedStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory store
// when Redis is unavailable. Default is true (allow fallback).
func WithInMemoryFallback(allow bool) ProcessedStoreFactoryOption {
	return func(f *ProcessedStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewProcessedStoreFactory creates a new factory
func NewProcessedStoreFactory(cfg config.RedisConfig, retention time.Duration, opts ...ProcessedStoreFactoryOption) *ProcessedStoreFactory {
	f := &ProcessedStoreFactory{
		redisConfig:           cfg,
		retention:             retention,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStore creates a Redis-based processed-order store
func (f *ProcessedStoreFactory) CreateRedisStore() (shared.ProcessedOrderStore, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	store, err := NewRedisProcessedStore(redisCfg, f.retention)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis processed-order store: %w", err)
	}

	return store, nil
}

// CreateInMemoryStore creates an in-memory processed-order store.
// WARNING: In-memory stores do not share state across process instances,
// which can lead to duplicate exports in distributed deployments.
func (f *ProcessedStoreFactory) CreateInMemoryStore() shared.ProcessedOrderStore {
	return NewInMemoryProcessedStore(f.retention)
}

// CreateStore creates a processed-order store based on whether Redis is
// available. It tries Redis first and falls back to in-memory if Redis is
// not available and the fallback is allowed.
func (f *ProcessedStoreFactory) CreateStore() (shared.ProcessedOrderStore, error) {
	store, err := f.CreateRedisStore()
	if err == nil {
		f.logger.Info("using Redis processed-order store")
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for duplicate suppression but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory processed-order store. "+
		"This may cause duplicate exports in distributed deployments.",
		zap.Error(err),
	)
	return f.CreateInMemoryStore(), nil
}
