package cache

import (
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
)

// NewIdempotencyStore returns the Redis-backed store when Redis is enabled,
// otherwise the in-memory fallback
func NewIdempotencyStore(cfg config.RedisConfig) (shared.IdempotencyStore, error) {
	if cfg.Enabled {
		return NewRedisIdempotencyStore(cfg)
	}
	return NewInMemoryIdempotencyStore(), nil
}
