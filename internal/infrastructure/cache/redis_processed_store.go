package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/malnatis/order-export/internal/domain/shared"
)

// RedisProcessedStore implements ProcessedOrderStore using Redis.
// This is suitable for distributed deployments where multiple instances
// need to share the processed-order state.
type RedisProcessedStore struct {
	client    *redis.Client
	keyPrefix string
	retention time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisProcessedStore creates a new Redis-based processed-order store
func NewRedisProcessedStore(cfg RedisConfig, retention time.Duration) (*RedisProcessedStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisProcessedStoreWithClient(client, "", retention), nil
}

// NewRedisProcessedStoreWithClient creates a store with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisProcessedStoreWithClient(client *redis.Client, keyPrefix string, retention time.Duration) *RedisProcessedStore {
	if keyPrefix == "" {
		keyPrefix = "order:processed:"
	}
	if retention <= 0 {
		retention = shared.DefaultProcessedOrderConfig().Retention
	}
	return &RedisProcessedStore{
		client:    client,
		keyPrefix: keyPrefix,
		retention: retention,
	}
}

// LastProcessedAt returns the commit time of the order's last export, if any.
func (s *RedisProcessedStore) LastProcessedAt(ctx context.Context, orderID int) (time.Time, bool, error) {
	key := s.keyPrefix + strconv.Itoa(orderID)

	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read processed record: %w", err)
	}

	millis, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt processed record for order %d: %w", orderID, err)
	}
	return time.UnixMilli(millis), true, nil
}

// MarkProcessed records the export commit time with the retention TTL.
// A later commit for the same order overwrites the earlier one.
func (s *RedisProcessedStore) MarkProcessed(ctx context.Context, orderID int, at time.Time) error {
	key := s.keyPrefix + strconv.Itoa(orderID)

	value := strconv.FormatInt(at.UnixMilli(), 10)
	if err := s.client.Set(ctx, key, value, s.retention).Err(); err != nil {
		return fmt.Errorf("failed to write processed record: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisProcessedStore) Close() error {
	return s.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (s *RedisProcessedStore) GetClient() *redis.Client {
	return s.client
}

// Ensure RedisProcessedStore implements ProcessedOrderStore
var _ shared.ProcessedOrderStore = (*RedisProcessedStore)(nil)
