package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/launchpad/internal/product/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(ctx context.Context, product domain.Product) error {
	if product.Metadata == nil {
		product.Metadata = datatypes.JSONMap{}
	}
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO products (id, active, name, description, image_url, metadata, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
			active = excluded.active,
			name = excluded.name,
			description = excluded.description,
			image_url = excluded.image_url,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at`,
		product.ID,
		product.Active,
		product.Name,
		product.Description,
		product.ImageURL,
		product.Metadata,
		product.UpdatedAt,
	).Error
}

func (r *repository) Deactivate(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE products SET active = ?, updated_at = ? WHERE id = ?`,
		false,
		at,
		id,
	).Error
}

func (r *repository) ListActive(ctx context.Context) ([]domain.Product, error) {
	var items []domain.Product
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, active, name, description, image_url, metadata, updated_at
		 FROM products
		 WHERE active = ?
		 ORDER BY name ASC, id ASC`,
		true,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
