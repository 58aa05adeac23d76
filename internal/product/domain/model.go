package domain

import (
	"context"
	"time"

	"gorm.io/datatypes"
)

// Product is the local copy of a gateway product, keyed by the gateway id.
type Product struct {
	ID          string            `gorm:"primaryKey;type:text" json:"id"`
	Active      bool              `gorm:"not null" json:"active"`
	Name        string            `gorm:"type:text;not null" json:"name"`
	Description *string           `gorm:"type:text" json:"description"`
	ImageURL    *string           `gorm:"type:text;column:image_url" json:"image_url"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	UpdatedAt   time.Time         `gorm:"not null" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

type Repository interface {
	Upsert(ctx context.Context, product Product) error
	Deactivate(ctx context.Context, id string, at time.Time) error
	ListActive(ctx context.Context) ([]Product, error)
}
