package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/launchpad/internal/clock"
	"github.com/smallbiznis/launchpad/internal/organization/domain"
	"github.com/smallbiznis/launchpad/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Repo  domain.Repository
	GenID *snowflake.Node
	Clock clock.Clock
	Log   *zap.Logger
}

type service struct {
	db    *gorm.DB
	repo  domain.Repository
	genID *snowflake.Node
	clock clock.Clock
	log   *zap.Logger
}

func NewService(p Params) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &service{
		db:    p.DB,
		repo:  p.Repo,
		genID: p.GenID,
		clock: clk,
		log:   p.Log.Named("organization.service"),
	}
}

func (s *service) ResolveBySlug(ctx context.Context, orgSlug, userID string) (*domain.Resolved, error) {
	orgSlug = strings.TrimSpace(orgSlug)
	if orgSlug == "" {
		return nil, domain.ErrNotFound
	}
	if _, err := parseUserID(userID); err != nil {
		return nil, domain.ErrUnauthorized
	}

	org, err := s.repo.FindBySlug(ctx, orgSlug)
	if err != nil {
		s.log.Warn("organization lookup failed", zap.String("slug", orgSlug), zap.Error(err))
		return nil, domain.ErrNotFound
	}
	if org == nil {
		return nil, domain.ErrNotFound
	}

	member, err := s.repo.FindMembership(ctx, org.ID, userID)
	if err != nil {
		s.log.Warn("membership lookup failed", zap.String("slug", orgSlug), zap.Error(err))
		return nil, domain.ErrUnauthorized
	}
	if member == nil {
		return nil, domain.ErrUnauthorized
	}

	return &domain.Resolved{Organization: *org, Role: member.Role}, nil
}

func (s *service) ResolveDefaultForUser(ctx context.Context, userID string) (*domain.Organization, error) {
	if _, err := parseUserID(userID); err != nil {
		return nil, domain.ErrNotFound
	}

	org, err := s.repo.FindLatestOwned(ctx, userID)
	if err != nil {
		s.log.Warn("default organization lookup failed", zap.Error(err))
		return nil, domain.ErrNotFound
	}
	if org == nil {
		return nil, domain.ErrNotFound
	}
	return org, nil
}

// Create provisions an organization and makes userID its owner.
func (s *service) Create(ctx context.Context, userID string, req domain.CreateOrganizationRequest) (*domain.Organization, error) {
	if _, err := parseUserID(userID); err != nil {
		return nil, domain.ErrInvalidUser
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	orgSlug := strings.TrimSpace(req.Slug)
	if orgSlug == "" {
		orgSlug = slug.Make(name)
	}
	if !slug.IsSlug(orgSlug) {
		return nil, domain.ErrInvalidSlug
	}

	now := s.clock.Now()
	org := domain.Organization{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      orgSlug,
		CreatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrganization(ctx, org); err != nil {
			return err
		}
		return repo.AddMember(ctx, domain.OrganizationMember{
			ID:        s.genID.Generate(),
			OrgID:     org.ID,
			UserID:    userID,
			Role:      domain.RoleOwner,
			CreatedAt: now,
		})
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrSlugTaken
		}
		return nil, err
	}

	s.log.Info("organization created", zap.String("org_id", org.ID.String()), zap.String("slug", org.Slug))
	return &org, nil
}

func parseUserID(raw string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(raw))
}
