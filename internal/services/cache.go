package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	ProductListCacheKey = "pos:products"
	CategoryCacheKey    = "pos:categories"

	cacheTTL = 5 * time.Minute
)

// Cache is a thin redis wrapper for the product catalog. The catalog embeds
// live stock numbers, so every stock mutation (checkout, refund, inventory
// receive/adjust, variant edits) must invalidate it. A nil client disables
// caching entirely.
type Cache struct {
	client *redis.Client
}

// NewCache connects to redis when a URL is configured; otherwise caching is a
// no-op.
func NewCache(redisURL string) *Cache {
	if redisURL == "" {
		return &Cache{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("invalid REDIS_URL, caching disabled: %v", err)
		return &Cache{}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("redis unreachable, caching disabled: %v", err)
		return &Cache{}
	}

	return &Cache{client: client}
}

// GetJSON loads a cached value into dest. Returns false on miss or when
// caching is disabled.
func (s *Cache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if s.client == nil {
		return false
	}

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		_ = s.client.Del(ctx, key)
		return false
	}
	return true
}

// SetJSON stores a value under key with the catalog TTL. Failures are logged
// and swallowed; the cache is never load-bearing.
func (s *Cache) SetJSON(ctx context.Context, key string, value interface{}) {
	if s.client == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := s.client.Set(ctx, key, data, cacheTTL).Err(); err != nil {
		log.Printf("cache set %s failed: %v", key, err)
	}
}

// InvalidateCatalog drops the product and category caches.
func (s *Cache) InvalidateCatalog(ctx context.Context) {
	if s.client == nil {
		return
	}

	if err := s.client.Del(ctx, ProductListCacheKey, CategoryCacheKey).Err(); err != nil {
		log.Printf("cache invalidation failed: %v", err)
	}
}
