// Package cache backs webhook delivery deduplication: carrier deliveries
// are retried aggressively, and a processed delivery id must stay visible
// long enough to absorb the retries.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("key not found")

type Provider interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type Config struct {
	Provider              string
	RedisConnectionString string
}

func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "memory", "":
		return NewMemoryProvider()
	case "redis":
		return NewRedisProvider(cfg.RedisConnectionString)
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.Provider)
	}
}

// WebhookKey builds the dedup key for one webhook delivery.
func WebhookKey(source, deliveryID string) string {
	return fmt.Sprintf("webhook:%s:%s", source, deliveryID)
}
