package service

import (
	"context"
	"testing"

	paymentdomain "github.com/smallbiznis/launchpad/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCatalogGroupsActivePrices(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.svc.UpsertProduct(ctx, paymentdomain.Product{ID: "prod_a", Active: true, Name: "Basic"}))
	require.NoError(t, f.svc.UpsertProduct(ctx, paymentdomain.Product{ID: "prod_b", Active: true, Name: "Pro"}))
	require.NoError(t, f.svc.UpsertProduct(ctx, paymentdomain.Product{ID: "prod_c", Active: true, Name: "Legacy"}))
	require.NoError(t, f.svc.UpsertPrice(ctx, paymentdomain.Price{ID: "price_a", ProductID: "prod_a", Active: true, Currency: "usd", Type: "recurring", UnitAmount: int64Ptr(500)}))
	require.NoError(t, f.svc.UpsertPrice(ctx, paymentdomain.Price{ID: "price_b1", ProductID: "prod_b", Active: true, Currency: "usd", Type: "recurring", UnitAmount: int64Ptr(2000)}))
	require.NoError(t, f.svc.UpsertPrice(ctx, paymentdomain.Price{ID: "price_b2", ProductID: "prod_b", Active: false, Currency: "usd", Type: "recurring", UnitAmount: int64Ptr(1500)}))

	catalog := NewCatalogService(f.products, f.prices, nil)
	items, err := catalog.ListCatalog(ctx)
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "Basic", items[0].Product.Name)
	assert.Equal(t, "Pro", items[1].Product.Name)
	require.Len(t, items[1].Prices, 1)
	assert.Equal(t, "price_b1", items[1].Prices[0].ID)
}

func TestListCatalogServesCacheUntilWebhookWrite(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.svc.UpsertProduct(ctx, paymentdomain.Product{ID: "prod_a", Active: true, Name: "Basic"}))
	require.NoError(t, f.svc.UpsertPrice(ctx, paymentdomain.Price{ID: "price_a", ProductID: "prod_a", Active: true, Currency: "usd", Type: "recurring", UnitAmount: int64Ptr(500)}))

	catalog := NewCatalogService(f.products, f.prices, f.catalog)
	items, err := catalog.ListCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	// A write that bypasses the synchronizer is not visible while cached.
	require.NoError(t, f.products.Deactivate(ctx, "prod_a", f.clock.Now()))
	items, err = catalog.ListCatalog(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, f.svc.DeactivateProduct(ctx, "prod_a"))
	items, err = catalog.ListCatalog(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}
