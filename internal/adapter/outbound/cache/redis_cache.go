package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/latticeauth/xacml-pdp/internal/service"
)

// RedisCache is a DecisionCache backed by Redis, for sharing cached
// decisions across PDP replicas. Every Result is JSON-encoded under
// keyPrefix+key, with TTL expiring stale entries rather than requiring an
// explicit invalidation protocol.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisCache wraps an existing *redis.Client. ttl <= 0 means entries
// never expire (an external Reload/FLUSHDB is then responsible for
// invalidation).
func NewRedisCache(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (c *RedisCache) redisKey(key string) string {
	return c.keyPrefix + key
}

func (c *RedisCache) GetAll(ctx context.Context, keys []string) (map[string]service.Result, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	redisKeys := make([]string, len(keys))
	for i, k := range keys {
		redisKeys[i] = c.redisKey(k)
	}

	vals, err := c.client.MGet(ctx, redisKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("cache: redis MGET: %w", err)
	}

	hits := map[string]service.Result{}
	for i, v := range vals {
		if v == nil {
			continue
		}
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var r service.Result
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("cache: decoding cached result for key %q: %w", keys[i], err)
		}
		hits[keys[i]] = r
	}
	return hits, nil
}

func (c *RedisCache) PutAll(ctx context.Context, results map[string]service.Result) error {
	if len(results) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for k, r := range results {
		encoded, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("cache: encoding result for key %q: %w", k, err)
		}
		pipe.Set(ctx, c.redisKey(k), encoded, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache: redis pipeline SET: %w", err)
	}
	return nil
}
