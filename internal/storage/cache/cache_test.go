package cache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"catalog/internal/storage/cache"
	"catalog/pkg/ptr"
)

func TestListKeyDeterministic(t *testing.T) {
	a := cache.ListKey("shoe", []string{"Shoes", "Clothing"}, ptr.New(10.0), nil, "price_asc", 2, 12)
	b := cache.ListKey("shoe", []string{"Clothing", "Shoes"}, ptr.New(10.0), nil, "price_asc", 2, 12)

	assert.Equal(t, a, b, "category order must not change the key")
}

func TestListKeyDistinguishesFilters(t *testing.T) {
	base := cache.ListKey("", nil, nil, nil, "", 1, 12)

	variants := []string{
		cache.ListKey("shoe", nil, nil, nil, "", 1, 12),
		cache.ListKey("", []string{"Shoes"}, nil, nil, "", 1, 12),
		cache.ListKey("", nil, ptr.New(50.0), nil, "", 1, 12),
		cache.ListKey("", nil, nil, ptr.New(100.0), "", 1, 12),
		cache.ListKey("", nil, nil, nil, "price_desc", 1, 12),
		cache.ListKey("", nil, nil, nil, "", 2, 12),
		cache.ListKey("", nil, nil, nil, "", 1, 24),
	}

	seen := map[string]struct{}{base: {}}
	for _, v := range variants {
		_, dup := seen[v]
		assert.False(t, dup, "key %q collides", v)
		seen[v] = struct{}{}
	}
}

func TestNilCacheIsNoOp(t *testing.T) {
	ctx := context.Background()

	var c *cache.QueryCache
	var out []string
	assert.False(t, c.Get(ctx, "k", &out))
	c.Set(ctx, "k", []string{"v"}, cache.TagProductLists)
	c.Invalidate(ctx, cache.TagProductLists)
	c.Delete(ctx, "k")

	disabled := cache.New(nil, 0)
	assert.False(t, disabled.Get(ctx, "k", &out))
	disabled.Set(ctx, "k", []string{"v"})
	disabled.Invalidate(ctx, cache.TagProductLists)
}
