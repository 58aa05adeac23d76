package domain

import (
	"context"
	"time"
)

const ProviderStripe = "stripe"

// Gateway is the hosted payment processor as seen by the billing core.
type Gateway interface {
	Provider() string
	CreateCustomer(ctx context.Context, input CustomerInput) (string, error)
	CreateCheckoutSession(ctx context.Context, input CheckoutInput) (*CheckoutSession, error)
	// ConstructEvent verifies signature against the raw payload and decodes
	// the event object.
	ConstructEvent(payload []byte, signature string) (*Event, error)
}

type CustomerInput struct {
	UserID string
	Email  string
	Name   string
}

type CheckoutInput struct {
	CustomerID       string
	PriceID          string
	OrganizationSlug string
	SuccessURL       string
	CancelURL        string
}

type CheckoutSession struct {
	ID  string
	URL string
}

const (
	EventProductCreated      = "product.created"
	EventProductUpdated      = "product.updated"
	EventProductDeleted      = "product.deleted"
	EventPriceCreated        = "price.created"
	EventPriceUpdated        = "price.updated"
	EventPriceDeleted        = "price.deleted"
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// Event is a verified gateway notification. Exactly one of Product, Price or
// Subscription is set for the event families the billing core understands.
type Event struct {
	ID        string
	Type      string
	CreatedAt time.Time

	Product      *Product
	Price        *Price
	Subscription *Subscription
}

type Product struct {
	ID          string
	Active      bool
	Name        string
	Description *string
	Images      []string
	Metadata    map[string]string
}

type Price struct {
	ID              string
	ProductID       string
	Active          bool
	Currency        string
	Nickname        *string
	Type            string
	UnitAmount      *int64
	Interval        *string
	IntervalCount   *int64
	TrialPeriodDays *int64
	Metadata        map[string]string
}

// Subscription timestamps are epoch seconds as delivered by the gateway; nil
// means the field was absent.
type Subscription struct {
	ID                 string
	CustomerID         string
	Status             string
	Metadata           map[string]string
	Items              []SubscriptionItem
	CancelAtPeriodEnd  bool
	CancelAt           *int64
	CanceledAt         *int64
	Created            int64
	CurrentPeriodStart int64
	CurrentPeriodEnd   int64
	EndedAt            *int64
	TrialStart         *int64
	TrialEnd           *int64
}

type SubscriptionItem struct {
	PriceID  string
	Quantity int64
}
