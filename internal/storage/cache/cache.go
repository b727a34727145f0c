// Package cache provides an optional Redis-backed query cache for catalog
// reads. Values are stored as JSON under deterministic keys derived from the
// logical query; list keys are additionally registered under a tag set so a
// mutation can invalidate every cached page in one call.
//
// A nil *QueryCache (or one built without a Redis client) is a valid no-op:
// every Get is a miss and every Set/Invalidate returns immediately.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"catalog/internal/config"
)

// TagProductLists groups every cached product list, regardless of filter.
const TagProductLists = "products:lists"

// NewRedisClient connects to Redis and verifies the connection with a ping.
// Returns nil when no address is configured, which disables caching.
func NewRedisClient(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return rdb, nil
}

type QueryCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a query cache over the given client. A nil client yields a
// cache that never hits.
func New(rdb *redis.Client, ttl time.Duration) *QueryCache {
	return &QueryCache{rdb: rdb, ttl: ttl}
}

func (c *QueryCache) enabled() bool {
	return c != nil && c.rdb != nil
}

// Get unmarshals the cached value for key into dest. Returns true on a hit.
// Errors are treated as misses; the cache never fails a read path.
func (c *QueryCache) Get(ctx context.Context, key string, dest any) bool {
	if !c.enabled() {
		return false
	}

	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}

	return json.Unmarshal(val, dest) == nil
}

// Set stores value under key and registers the key with each tag so it can
// be invalidated later. Failures are ignored.
func (c *QueryCache) Set(ctx context.Context, key string, value any, tags ...string) {
	if !c.enabled() {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}

	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, key, data, c.ttl)
	for _, tag := range tags {
		pipe.SAdd(ctx, tagKey(tag), key)
		pipe.Expire(ctx, tagKey(tag), c.ttl)
	}
	_, _ = pipe.Exec(ctx)
}

// Invalidate removes every key registered under the given tags, then the tag
// sets themselves.
func (c *QueryCache) Invalidate(ctx context.Context, tags ...string) {
	if !c.enabled() {
		return
	}

	for _, tag := range tags {
		keys, err := c.rdb.SMembers(ctx, tagKey(tag)).Result()
		if err == nil && len(keys) > 0 {
			c.rdb.Del(ctx, keys...)
		}
		c.rdb.Del(ctx, tagKey(tag))
	}
}

// Delete removes individual keys.
func (c *QueryCache) Delete(ctx context.Context, keys ...string) {
	if !c.enabled() || len(keys) == 0 {
		return
	}
	c.rdb.Del(ctx, keys...)
}

func tagKey(tag string) string {
	return "tag:" + tag
}

// ListKey derives a deterministic cache key from a logical list query. The
// same filter always yields the same key; category order does not matter.
func ListKey(search string, categories []string, minPrice, maxPrice *float64, sortBy string, page, limit int) string {
	sorted := make([]string, len(categories))
	copy(sorted, categories)
	sort.Strings(sorted)

	var b strings.Builder
	b.WriteString("products:list:")
	fmt.Fprintf(&b, "q=%s|c=%s|min=%s|max=%s|s=%s|p=%d|l=%d",
		search, strings.Join(sorted, ","), floatPart(minPrice), floatPart(maxPrice), sortBy, page, limit)

	return b.String()
}

// ProductKey is the cache key for a single product looked up by slug.
func ProductKey(slug string) string {
	return "products:slug:" + slug
}

// RelatedKey is the cache key for a product's related list.
func RelatedKey(slug string) string {
	return "products:related:" + slug
}

func floatPart(f *float64) string {
	if f == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *f)
}
