package repository

import (
	"context"

	"github.com/smallbiznis/launchpad/internal/customer/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) FindByUserID(ctx context.Context, userID string) (*domain.Customer, error) {
	return r.findOne(ctx, `id = ?`, userID)
}

func (r *repository) FindByStripeCustomerID(ctx context.Context, stripeCustomerID string) (*domain.Customer, error) {
	return r.findOne(ctx, `stripe_customer_id = ?`, stripeCustomerID)
}

func (r *repository) findOne(ctx context.Context, where string, arg any) (*domain.Customer, error) {
	var item domain.Customer
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, stripe_customer_id, created_at
		 FROM customers
		 WHERE `+where+`
		 LIMIT 1`,
		arg,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == "" {
		return nil, nil
	}
	return &item, nil
}

func (r *repository) Insert(ctx context.Context, customer domain.Customer) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		`INSERT INTO customers (id, stripe_customer_id, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		customer.ID,
		customer.StripeCustomerID,
		customer.CreatedAt,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
