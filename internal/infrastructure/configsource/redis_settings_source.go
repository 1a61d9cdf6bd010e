// Package configsource provides the externally managed export settings,
// stored as JSON values in Redis so they can be changed without a deploy.
package configsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	appexport "github.com/malnatis/order-export/internal/application/export"
)

// RedisSettingsSource reads export settings as JSON documents keyed by name.
type RedisSettingsSource struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisSettingsSource creates a settings source on an existing client.
func NewRedisSettingsSource(client *redis.Client, keyPrefix string) *RedisSettingsSource {
	if keyPrefix == "" {
		keyPrefix = "settings:"
	}
	return &RedisSettingsSource{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Value reads the setting stored under key and unmarshals it into out.
// Returns ErrSettingNotFound when no value is stored, so callers can fall
// back to their built-in defaults.
func (s *RedisSettingsSource) Value(ctx context.Context, key string, out any) error {
	raw, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return appexport.ErrSettingNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read setting %q: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("corrupt setting %q: %w", key, err)
	}
	return nil
}

// Ensure RedisSettingsSource implements SettingsSource
var _ appexport.SettingsSource = (*RedisSettingsSource)(nil)
