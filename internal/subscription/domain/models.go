package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusTrialing          Status = "trialing"
	StatusActive            Status = "active"
	StatusPastDue           Status = "past_due"
	StatusCanceled          Status = "canceled"
	StatusUnpaid            Status = "unpaid"
	StatusIncomplete        Status = "incomplete"
	StatusIncompleteExpired Status = "incomplete_expired"
	StatusPaused            Status = "paused"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTrialing, StatusActive, StatusPastDue, StatusCanceled,
		StatusUnpaid, StatusIncomplete, StatusIncompleteExpired, StatusPaused:
		return true
	}
	return false
}

// Subscription is the local mirror of a gateway subscription, attached to
// exactly one organization.
type Subscription struct {
	ID                 string            `gorm:"primaryKey;type:text" json:"id"`
	UserID             string            `gorm:"type:text;not null;index" json:"user_id"`
	OrganizationID     snowflake.ID      `gorm:"not null;index" json:"organization_id"`
	PriceID            string            `gorm:"type:text;not null" json:"price_id"`
	Status             Status            `gorm:"type:text;not null" json:"status"`
	Quantity           int64             `gorm:"not null;default:1" json:"quantity"`
	CancelAtPeriodEnd  bool              `gorm:"not null" json:"cancel_at_period_end"`
	CancelAt           *time.Time        `json:"cancel_at"`
	CanceledAt         *time.Time        `json:"canceled_at"`
	CurrentPeriodStart time.Time         `gorm:"not null" json:"current_period_start"`
	CurrentPeriodEnd   time.Time         `gorm:"not null" json:"current_period_end"`
	Created            time.Time         `gorm:"not null" json:"created"`
	EndedAt            *time.Time        `json:"ended_at"`
	TrialStart         *time.Time        `json:"trial_start"`
	TrialEnd           *time.Time        `json:"trial_end"`
	Metadata           datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	// LastEventAt is the creation time of the gateway event that last wrote
	// this row.
	LastEventAt *time.Time `json:"last_event_at"`
}

func (Subscription) TableName() string { return "subscriptions" }

type Repository interface {
	// Upsert writes sub unless the stored row was written by a newer event.
	// It reports whether the row was written.
	Upsert(ctx context.Context, sub Subscription) (bool, error)
	ListByOrganization(ctx context.Context, orgID snowflake.ID) ([]Subscription, error)
}
