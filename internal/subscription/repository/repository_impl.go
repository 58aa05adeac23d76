package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/launchpad/internal/subscription/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const subscriptionColumns = `id, user_id, organization_id, price_id, status, quantity,
	cancel_at_period_end, cancel_at, canceled_at, current_period_start, current_period_end,
	created, ended_at, trial_start, trial_end, metadata, last_event_at`

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(ctx context.Context, sub domain.Subscription) (bool, error) {
	if sub.Metadata == nil {
		sub.Metadata = datatypes.JSONMap{}
	}
	res := r.db.WithContext(ctx).Exec(
		`INSERT INTO subscriptions (`+subscriptionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
			user_id = excluded.user_id,
			organization_id = excluded.organization_id,
			price_id = excluded.price_id,
			status = excluded.status,
			quantity = excluded.quantity,
			cancel_at_period_end = excluded.cancel_at_period_end,
			cancel_at = excluded.cancel_at,
			canceled_at = excluded.canceled_at,
			current_period_start = excluded.current_period_start,
			current_period_end = excluded.current_period_end,
			created = excluded.created,
			ended_at = excluded.ended_at,
			trial_start = excluded.trial_start,
			trial_end = excluded.trial_end,
			metadata = excluded.metadata,
			last_event_at = excluded.last_event_at
		 WHERE subscriptions.last_event_at IS NULL
			OR excluded.last_event_at IS NULL
			OR subscriptions.last_event_at <= excluded.last_event_at`,
		sub.ID,
		sub.UserID,
		sub.OrganizationID,
		sub.PriceID,
		sub.Status,
		sub.Quantity,
		sub.CancelAtPeriodEnd,
		sub.CancelAt,
		sub.CanceledAt,
		sub.CurrentPeriodStart,
		sub.CurrentPeriodEnd,
		sub.Created,
		sub.EndedAt,
		sub.TrialStart,
		sub.TrialEnd,
		sub.Metadata,
		sub.LastEventAt,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ListByOrganization(ctx context.Context, orgID snowflake.ID) ([]domain.Subscription, error) {
	var items []domain.Subscription
	err := r.db.WithContext(ctx).Raw(
		`SELECT `+subscriptionColumns+`
		 FROM subscriptions
		 WHERE organization_id = ?
		 ORDER BY created DESC`,
		orgID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
