package domain

import (
	"context"
	"time"
)

// Profile mirrors an identity-provider user. ID is the provider's user id.
type Profile struct {
	ID         string    `gorm:"primaryKey;type:text" json:"id"`
	Email      string    `gorm:"type:text;not null" json:"email"`
	Username   *string   `gorm:"type:text" json:"username"`
	PictureURL *string   `gorm:"type:text;column:picture_url" json:"picture_url"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

type Repository interface {
	FindByID(ctx context.Context, userID string) (*Profile, error)
	Upsert(ctx context.Context, profile Profile) error
}
