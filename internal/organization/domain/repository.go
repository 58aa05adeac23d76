package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrganization(ctx context.Context, org Organization) error
	AddMember(ctx context.Context, member OrganizationMember) error
	FindBySlug(ctx context.Context, slug string) (*Organization, error)
	FindMembership(ctx context.Context, orgID snowflake.ID, userID string) (*OrganizationMember, error)
	// FindLatestOwned returns the organization whose owner membership for
	// userID was created most recently.
	FindLatestOwned(ctx context.Context, userID string) (*Organization, error)
}
