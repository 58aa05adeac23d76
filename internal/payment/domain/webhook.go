package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type WebhookEventStatus string

const (
	WebhookEventProcessed WebhookEventStatus = "processed"
	WebhookEventIgnored   WebhookEventStatus = "ignored"
)

// WebhookEvent is the ledger row for a gateway delivery that was handled.
type WebhookEvent struct {
	ID              snowflake.ID       `gorm:"primaryKey" json:"id"`
	Provider        string             `gorm:"type:text;not null" json:"provider"`
	ProviderEventID string             `gorm:"type:text;not null;uniqueIndex:ux_webhook_events_provider_event_id" json:"provider_event_id"`
	EventType       string             `gorm:"type:text;not null;index" json:"event_type"`
	DeliveryID      string             `gorm:"type:text;not null" json:"delivery_id"`
	Status          WebhookEventStatus `gorm:"type:text;not null" json:"status"`
	ReceivedAt      time.Time          `gorm:"not null" json:"received_at"`
	ProcessedAt     time.Time          `gorm:"not null" json:"processed_at"`
}

func (WebhookEvent) TableName() string { return "webhook_events" }

type WebhookRepository interface {
	// Record stores the event unless its provider event id is already known
	// and reports whether a row was inserted.
	Record(ctx context.Context, event WebhookEvent) (bool, error)
	FindByProviderEventID(ctx context.Context, providerEventID string) (*WebhookEvent, error)
}

type WebhookService interface {
	Ingest(ctx context.Context, payload []byte, signature string) (*IngestResult, error)
}

type IngestResult struct {
	EventID    string
	EventType  string
	DeliveryID string
	// PreviousDeliveryID is the ledger delivery that first handled the event.
	PreviousDeliveryID string
	Status             WebhookEventStatus
	// Redelivery is true when the event was already in the ledger.
	Redelivery bool
}

var ErrUnhandledEventType = errors.New("unhandled_event_type")
