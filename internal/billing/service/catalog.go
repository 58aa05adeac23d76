package service

import (
	"context"

	"github.com/smallbiznis/launchpad/internal/billing/domain"
	"github.com/smallbiznis/launchpad/internal/cache"
	pricedomain "github.com/smallbiznis/launchpad/internal/price/domain"
	productdomain "github.com/smallbiznis/launchpad/internal/product/domain"
)

type catalog struct {
	products productdomain.Repository
	prices   pricedomain.Repository
	cache    cache.CatalogCache
}

// NewCatalogService reads through catalogCache when one is given.
func NewCatalogService(products productdomain.Repository, prices pricedomain.Repository, catalogCache cache.CatalogCache) domain.CatalogService {
	return &catalog{products: products, prices: prices, cache: catalogCache}
}

// ListCatalog returns active products, each with its active prices. Products
// without an active price are omitted.
func (c *catalog) ListCatalog(ctx context.Context) ([]domain.CatalogProduct, error) {
	if c.cache != nil {
		if items, ok := c.cache.Get(); ok {
			return items, nil
		}
	}

	products, err := c.products.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	prices, err := c.prices.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	byProduct := make(map[string][]pricedomain.Price, len(products))
	for _, p := range prices {
		byProduct[p.ProductID] = append(byProduct[p.ProductID], p)
	}

	out := make([]domain.CatalogProduct, 0, len(products))
	for _, p := range products {
		items := byProduct[p.ID]
		if len(items) == 0 {
			continue
		}
		out = append(out, domain.CatalogProduct{Product: p, Prices: items})
	}

	if c.cache != nil {
		c.cache.Set(out)
	}
	return out, nil
}
