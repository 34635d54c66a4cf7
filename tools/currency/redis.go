package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces cached rate tables
const DefaultRedisPrefix = "research-crew:rates:"

// RedisCache shares rate tables between processes through redis
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache returns a RedisCache, an empty prefix falls back to DefaultRedisPrefix
func NewRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) key(base string) string {
	return c.prefix + base
}

func (c *RedisCache) Get(ctx context.Context, base string) (*RateTable, bool, error) {
	bs, err := c.client.Get(ctx, c.key(base)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("redis get rates %s: %w", base, err)
	}
	table := new(RateTable)
	if err := json.Unmarshal(bs, table); err != nil {
		return nil, false, fmt.Errorf("decode cached rates %s: %w", base, err)
	}
	return table, true, nil
}

func (c *RedisCache) Set(ctx context.Context, base string, table *RateTable, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	bs, err := json.Marshal(table)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key(base), bs, ttl).Err(); err != nil {
		return fmt.Errorf("redis set rates %s: %w", base, err)
	}
	return nil
}
