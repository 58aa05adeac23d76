package repository

import (
	"context"

	"github.com/smallbiznis/launchpad/internal/payment/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewWebhookRepository(db *gorm.DB) domain.WebhookRepository {
	return &repository{db: db}
}

func (r *repository) Record(ctx context.Context, event domain.WebhookEvent) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		`INSERT INTO webhook_events (
			id, provider, provider_event_id, event_type, delivery_id, status, received_at, processed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (provider_event_id) DO NOTHING`,
		event.ID,
		event.Provider,
		event.ProviderEventID,
		event.EventType,
		event.DeliveryID,
		event.Status,
		event.ReceivedAt,
		event.ProcessedAt,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindByProviderEventID(ctx context.Context, providerEventID string) (*domain.WebhookEvent, error) {
	var item domain.WebhookEvent
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, provider, provider_event_id, event_type, delivery_id, status, received_at, processed_at
		 FROM webhook_events
		 WHERE provider_event_id = ?
		 LIMIT 1`,
		providerEventID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}
