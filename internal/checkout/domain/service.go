package domain

import (
	"context"
	"errors"
)

type CreateCheckoutRequest struct {
	PriceID          string `form:"price" json:"price"`
	OrganizationSlug string `form:"organizationSlug" json:"organizationSlug"`
}

type Service interface {
	// CreateCheckoutSession returns the hosted checkout URL for userID
	// subscribing the organization to a price.
	CreateCheckoutSession(ctx context.Context, req CreateCheckoutRequest, userID string) (string, error)
}

var ErrUnauthenticated = errors.New("unauthenticated")
