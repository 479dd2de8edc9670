package cart

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jafarshop/storefront/internal/config"
)

// OpenRepository builds the adapter selected by CART_STORE. The returned
// close function releases its connection.
func OpenRepository(ctx context.Context, cfg config.CartStoreConfig) (Repository, func() error, error) {
	switch cfg.Driver {
	case config.CartStoreMemory:
		return NewMemoryRepository(), func() error { return nil }, nil

	case config.CartStoreSQLite:
		repo, err := NewSQLiteRepository(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil

	case config.CartStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis ping failed: %w", err)
		}
		return NewRedisRepository(client, cfg.SessionTTL), client.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown cart store %q", cfg.Driver)
	}
}
