package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/launchpad/internal/price/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(ctx context.Context, price domain.Price) error {
	if price.Metadata == nil {
		price.Metadata = datatypes.JSONMap{}
	}
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO prices (
			id, product_id, active, description, currency, type, unit_amount,
			interval, interval_count, trial_period_days, metadata, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			product_id = excluded.product_id,
			active = excluded.active,
			description = excluded.description,
			currency = excluded.currency,
			type = excluded.type,
			unit_amount = excluded.unit_amount,
			interval = excluded.interval,
			interval_count = excluded.interval_count,
			trial_period_days = excluded.trial_period_days,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at`,
		price.ID,
		price.ProductID,
		price.Active,
		price.Description,
		price.Currency,
		price.Type,
		price.UnitAmount,
		price.Interval,
		price.IntervalCount,
		price.TrialPeriodDays,
		price.Metadata,
		price.UpdatedAt,
	).Error
}

func (r *repository) Deactivate(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE prices SET active = ?, updated_at = ? WHERE id = ?`,
		false,
		at,
		id,
	).Error
}

func (r *repository) ListActive(ctx context.Context) ([]domain.Price, error) {
	var items []domain.Price
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, product_id, active, description, currency, type, unit_amount,
			interval, interval_count, trial_period_days, metadata, updated_at
		 FROM prices
		 WHERE active = ?
		 ORDER BY unit_amount ASC, id ASC`,
		true,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
