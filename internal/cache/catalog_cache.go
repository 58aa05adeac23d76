package cache

import (
	"time"

	billingdomain "github.com/smallbiznis/launchpad/internal/billing/domain"
)

const defaultCatalogTTL = 30 * time.Second

// CatalogCache holds the rendered product catalog between webhook writes.
type CatalogCache interface {
	Get() ([]billingdomain.CatalogProduct, bool)
	Set(items []billingdomain.CatalogProduct)
	Invalidate()
}

type catalogCache struct {
	entries Cache[string, []billingdomain.CatalogProduct]
}

// NewCatalogCache returns an in-memory catalog cache. Entries expire after a
// short TTL so that instances which missed a write converge.
func NewCatalogCache() CatalogCache {
	return &catalogCache{
		entries: NewTTLCache[string, []billingdomain.CatalogProduct](1, defaultCatalogTTL),
	}
}

func (c *catalogCache) Get() ([]billingdomain.CatalogProduct, bool) {
	return c.entries.Get(cacheKey("catalog", "active"))
}

func (c *catalogCache) Set(items []billingdomain.CatalogProduct) {
	if items == nil {
		return
	}
	c.entries.Set(cacheKey("catalog", "active"), items)
}

func (c *catalogCache) Invalidate() {
	c.entries.Purge()
}
