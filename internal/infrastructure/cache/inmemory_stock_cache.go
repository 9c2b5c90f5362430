package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	appinv "github.com/resto/backend/internal/application/inventory"
)

// InMemoryStockCache is a process-local stock cache for single-instance
// deployments and tests. Entries expire lazily on read.
type InMemoryStockCache struct {
	mu      sync.RWMutex
	entries map[string]inMemoryEntry
	ttl     time.Duration
}

type inMemoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// NewInMemoryStockCache creates an in-memory stock cache
func NewInMemoryStockCache(ttl time.Duration) *InMemoryStockCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &InMemoryStockCache{
		entries: make(map[string]inMemoryEntry),
		ttl:     ttl,
	}
}

func cacheKey(organizationID, ingredientID uuid.UUID) string {
	return organizationID.String() + ":" + ingredientID.String()
}

// GetIngredient returns the cached snapshot and whether it was present
func (c *InMemoryStockCache) GetIngredient(_ context.Context, organizationID, ingredientID uuid.UUID) ([]byte, bool, error) {
	key := cacheKey(organizationID, ingredientID)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return entry.payload, true, nil
}

// SetIngredient stores a snapshot with the configured TTL
func (c *InMemoryStockCache) SetIngredient(_ context.Context, organizationID, ingredientID uuid.UUID, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(organizationID, ingredientID)] = inMemoryEntry{
		payload:   payload,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

// InvalidateIngredient drops the cached snapshot
func (c *InMemoryStockCache) InvalidateIngredient(_ context.Context, organizationID, ingredientID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey(organizationID, ingredientID))
	return nil
}

// Len returns the number of live entries (for tests and monitoring)
func (c *InMemoryStockCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure InMemoryStockCache implements StockCache
var _ appinv.StockCache = (*InMemoryStockCache)(nil)
