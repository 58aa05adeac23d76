package repository

import (
	"context"

	"github.com/smallbiznis/launchpad/internal/profile/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, userID string) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, email, username, picture_url, created_at, updated_at
		 FROM profiles
		 WHERE id = ?
		 LIMIT 1`,
		userID,
	).Scan(&profile).Error
	if err != nil {
		return nil, err
	}
	if profile.ID == "" {
		return nil, nil
	}
	return &profile, nil
}

func (r *repository) Upsert(ctx context.Context, profile domain.Profile) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO profiles (id, email, username, picture_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
			email = excluded.email,
			username = COALESCE(excluded.username, profiles.username),
			picture_url = COALESCE(excluded.picture_url, profiles.picture_url),
			updated_at = excluded.updated_at`,
		profile.ID,
		profile.Email,
		profile.Username,
		profile.PictureURL,
		profile.CreatedAt,
		profile.UpdatedAt,
	).Error
}
