package cache

import (
	"testing"
	"time"

	billingdomain "github.com/smallbiznis/launchpad/internal/billing/domain"
	productdomain "github.com/smallbiznis/launchpad/internal/product/domain"
	"github.com/stretchr/testify/assert"
)

func TestTTLCacheExpires(t *testing.T) {
	c := NewTTLCache[string, int](4, 20*time.Millisecond)
	c.Set("a", 1)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	assert.Eventually(t, func() bool {
		_, ok := c.Get("a")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestCatalogCacheInvalidate(t *testing.T) {
	c := NewCatalogCache()
	_, ok := c.Get()
	assert.False(t, ok)

	c.Set(nil)
	_, ok = c.Get()
	assert.False(t, ok)

	c.Set([]billingdomain.CatalogProduct{{Product: productdomain.Product{ID: "prod_1"}}})
	items, ok := c.Get()
	assert.True(t, ok)
	assert.Len(t, items, 1)

	c.Invalidate()
	_, ok = c.Get()
	assert.False(t, ok)
}

func TestCacheKeyNormalizes(t *testing.T) {
	assert.Equal(t, "catalog|active", cacheKey(" Catalog ", "", "ACTIVE"))
}
