package domain

import (
	"context"
	"errors"
	"time"

	paymentdomain "github.com/smallbiznis/launchpad/internal/payment/domain"
	pricedomain "github.com/smallbiznis/launchpad/internal/price/domain"
	productdomain "github.com/smallbiznis/launchpad/internal/product/domain"
)

// Service reconciles local billing state with the payment gateway. Every
// write is an upsert keyed by the gateway id, so replaying an event is safe.
type Service interface {
	UpsertProduct(ctx context.Context, product paymentdomain.Product) error
	DeactivateProduct(ctx context.Context, productID string) error
	UpsertPrice(ctx context.Context, price paymentdomain.Price) error
	DeactivatePrice(ctx context.Context, priceID string) error
	// ManageSubscription attaches the subscription to the organization named
	// in its metadata. eventAt is the creation time of the carrying event.
	ManageSubscription(ctx context.Context, sub paymentdomain.Subscription, eventAt time.Time) error
	CreateOrRetrieveCustomer(ctx context.Context, userID string) (string, error)
}

type CatalogService interface {
	ListCatalog(ctx context.Context) ([]CatalogProduct, error)
}

type CatalogProduct struct {
	Product productdomain.Product `json:"product"`
	Prices  []pricedomain.Price   `json:"prices"`
}

const MetadataOrganizationSlug = "organizationSlug"

var (
	ErrInvalidProduct      = errors.New("invalid_product")
	ErrInvalidPrice        = errors.New("invalid_price")
	ErrInvalidSubscription = errors.New("invalid_subscription")
	ErrInvalidUser         = errors.New("invalid_user")
	ErrCustomerNotFound    = errors.New("customer_not_found")
	// ErrProfileMissing means an authenticated user has no profile row, which
	// sign-up always creates.
	ErrProfileMissing = errors.New("profile_missing")
)

// ToDateTime converts gateway epoch seconds to a UTC time.
func ToDateTime(secs int64) time.Time {
	return time.Unix(secs, 0).UTC()
}
