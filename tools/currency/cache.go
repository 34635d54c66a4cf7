package currency

import (
	"context"
	"sync"
	"time"
)

// Cache stores rate tables keyed by base currency code
type Cache interface {
	Get(ctx context.Context, base string) (*RateTable, bool, error)
	Set(ctx context.Context, base string, table *RateTable, ttl time.Duration) error
}

type memoryEntry struct {
	table     *RateTable
	expiresAt time.Time
}

// MemoryCache is an in-process Cache
// threadsafe
type MemoryCache struct {
	entries map[string]memoryEntry
	mtx     sync.RWMutex
	now     func() time.Time
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache returns a new MemoryCache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, base string) (*RateTable, bool, error) {
	c.mtx.RLock()
	entry, ok := c.entries[base]
	c.mtx.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(entry.expiresAt) {
		c.mtx.Lock()
		delete(c.entries, base)
		c.mtx.Unlock()
		return nil, false, nil
	}
	return entry.table, true, nil
}

func (c *MemoryCache) Set(_ context.Context, base string, table *RateTable, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mtx.Lock()
	c.entries[base] = memoryEntry{table: table, expiresAt: c.now().Add(ttl)}
	c.mtx.Unlock()
	return nil
}
