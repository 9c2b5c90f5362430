package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	appinv "github.com/resto/backend/internal/application/inventory"
)

// RedisStockCache caches serialized ingredient snapshots in Redis. Suited to
// multi-instance deployments where an invalidation on one node must be seen
// by all. Entries carry a TTL as a safety net; ledger transactions invalidate
// eagerly after commit.
type RedisStockCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStockCache creates a Redis-backed stock cache and verifies the
// connection
func NewRedisStockCache(addr, password string, db int, ttl time.Duration) (*RedisStockCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStockCacheWithClient(client, ttl), nil
}

// NewRedisStockCacheWithClient creates a cache over an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisStockCacheWithClient(client *redis.Client, ttl time.Duration) *RedisStockCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisStockCache{
		client:    client,
		keyPrefix: "stock:ingredient:",
		ttl:       ttl,
	}
}

func (c *RedisStockCache) key(organizationID, ingredientID uuid.UUID) string {
	return c.keyPrefix + organizationID.String() + ":" + ingredientID.String()
}

// GetIngredient returns the cached snapshot and whether it was present
func (c *RedisStockCache) GetIngredient(ctx context.Context, organizationID, ingredientID uuid.UUID) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, c.key(organizationID, ingredientID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read ingredient cache: %w", err)
	}
	return payload, true, nil
}

// SetIngredient stores a snapshot with the configured TTL
func (c *RedisStockCache) SetIngredient(ctx context.Context, organizationID, ingredientID uuid.UUID, payload []byte) error {
	if err := c.client.Set(ctx, c.key(organizationID, ingredientID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write ingredient cache: %w", err)
	}
	return nil
}

// InvalidateIngredient drops the cached snapshot after a stock mutation
func (c *RedisStockCache) InvalidateIngredient(ctx context.Context, organizationID, ingredientID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(organizationID, ingredientID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate ingredient cache: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisStockCache) Close() error {
	return c.client.Close()
}

// Ensure RedisStockCache implements StockCache
var _ appinv.StockCache = (*RedisStockCache)(nil)
