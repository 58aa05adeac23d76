package domain

import (
	"context"
	"time"
)

// Customer maps an identity user to their payment-gateway customer. A user
// has at most one.
type Customer struct {
	ID               string    `gorm:"primaryKey;type:text" json:"id"`
	StripeCustomerID string    `gorm:"type:text;not null;uniqueIndex:ux_customers_stripe_customer_id" json:"stripe_customer_id"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
}

func (Customer) TableName() string { return "customers" }

type Repository interface {
	FindByUserID(ctx context.Context, userID string) (*Customer, error)
	FindByStripeCustomerID(ctx context.Context, stripeCustomerID string) (*Customer, error)
	// Insert stores the mapping unless one already exists for the user and
	// reports whether this call created it.
	Insert(ctx context.Context, customer Customer) (bool, error)
}
