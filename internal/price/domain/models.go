package domain

import (
	"context"
	"time"

	"gorm.io/datatypes"
)

type Type string

const (
	TypeOneTime   Type = "one_time"
	TypeRecurring Type = "recurring"
)

// Price is the local copy of a gateway price. UnitAmount is in the smallest
// currency unit.
type Price struct {
	ID              string            `gorm:"primaryKey;type:text" json:"id"`
	ProductID       string            `gorm:"type:text;not null;index" json:"product_id"`
	Active          bool              `gorm:"not null" json:"active"`
	Description     *string           `gorm:"type:text" json:"description"`
	Currency        string            `gorm:"type:text;not null" json:"currency"`
	Type            Type              `gorm:"type:text;not null" json:"type"`
	UnitAmount      int64             `gorm:"not null;default:0" json:"unit_amount"`
	Interval        *string           `gorm:"type:text" json:"interval"`
	IntervalCount   *int64            `json:"interval_count"`
	TrialPeriodDays *int64            `json:"trial_period_days"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	UpdatedAt       time.Time         `gorm:"not null" json:"updated_at"`
}

func (Price) TableName() string { return "prices" }

type Repository interface {
	Upsert(ctx context.Context, price Price) error
	Deactivate(ctx context.Context, id string, at time.Time) error
	ListActive(ctx context.Context) ([]Price, error)
}
