package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/launchpad/internal/clock"
	"github.com/smallbiznis/launchpad/internal/organization/domain"
	"github.com/smallbiznis/launchpad/internal/organization/repository"
	"github.com/smallbiznis/launchpad/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	conn  *gorm.DB
	repo  domain.Repository
	svc   domain.Service
	genID *snowflake.Node
	clock *clock.FakeClock
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := db.NewTest(t, &domain.Organization{}, &domain.OrganizationMember{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	repo := repository.NewRepository(conn)
	clk := clock.NewFakeClock(time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC))
	svc := NewService(Params{DB: conn, Repo: repo, GenID: node, Clock: clk, Log: zap.NewNop()})
	return fixture{conn: conn, repo: repo, svc: svc, genID: node, clock: clk}
}

func (f fixture) seedOrg(t *testing.T, slug string) domain.Organization {
	t.Helper()
	org := domain.Organization{ID: f.genID.Generate(), Name: slug, Slug: slug, CreatedAt: time.Now().UTC()}
	require.NoError(t, f.repo.CreateOrganization(context.Background(), org))
	return org
}

func (f fixture) seedMember(t *testing.T, org domain.Organization, userID string, role domain.Role, at time.Time) {
	t.Helper()
	require.NoError(t, f.repo.AddMember(context.Background(), domain.OrganizationMember{
		ID:        f.genID.Generate(),
		OrgID:     org.ID,
		UserID:    userID,
		Role:      role,
		CreatedAt: at,
	}))
}

func TestResolveBySlugReturnsRoleForMember(t *testing.T) {
	f := newFixture(t)
	user := uuid.NewString()
	org := f.seedOrg(t, "acme")
	f.seedMember(t, org, user, domain.RoleAdmin, time.Now().UTC())

	resolved, err := f.svc.ResolveBySlug(context.Background(), "acme", user)
	require.NoError(t, err)
	assert.Equal(t, org.ID, resolved.Organization.ID)
	assert.Equal(t, domain.RoleAdmin, resolved.Role)
}

func TestResolveBySlugRejectsNonMember(t *testing.T) {
	f := newFixture(t)
	owner, stranger := uuid.NewString(), uuid.NewString()
	org := f.seedOrg(t, "acme")
	f.seedMember(t, org, owner, domain.RoleOwner, time.Now().UTC())

	_, err := f.svc.ResolveBySlug(context.Background(), "acme", stranger)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestResolveBySlugUnknownSlug(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ResolveBySlug(context.Background(), "missing", uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.ResolveBySlug(context.Background(), "  ", uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResolveDefaultForUserPicksNewestOwnedOrganization(t *testing.T) {
	f := newFixture(t)
	user := uuid.NewString()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	older := f.seedOrg(t, "older")
	newer := f.seedOrg(t, "newer")
	joined := f.seedOrg(t, "joined")
	f.seedMember(t, older, user, domain.RoleOwner, base)
	f.seedMember(t, newer, user, domain.RoleOwner, base.Add(time.Hour))
	f.seedMember(t, joined, user, domain.RoleMember, base.Add(2*time.Hour))

	org, err := f.svc.ResolveDefaultForUser(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "newer", org.Slug)
}

func TestResolveDefaultForUserWithoutOwnership(t *testing.T) {
	f := newFixture(t)
	user := uuid.NewString()
	org := f.seedOrg(t, "acme")
	f.seedMember(t, org, user, domain.RoleMember, time.Now().UTC())

	_, err := f.svc.ResolveDefaultForUser(context.Background(), user)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateMakesCallerOwner(t *testing.T) {
	f := newFixture(t)
	user := uuid.NewString()

	org, err := f.svc.Create(context.Background(), user, domain.CreateOrganizationRequest{Name: "Acme Rockets"})
	require.NoError(t, err)
	assert.Equal(t, "acme-rockets", org.Slug)

	resolved, err := f.svc.ResolveBySlug(context.Background(), "acme-rockets", user)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, resolved.Role)

	_, err = f.svc.Create(context.Background(), uuid.NewString(), domain.CreateOrganizationRequest{Name: "Other", Slug: "acme-rockets"})
	assert.ErrorIs(t, err, domain.ErrSlugTaken)
}

func TestCreateStampsClockTime(t *testing.T) {
	f := newFixture(t)
	user := uuid.NewString()

	first, err := f.svc.Create(context.Background(), user, domain.CreateOrganizationRequest{Name: "First"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC), first.CreatedAt)

	f.clock.Advance(time.Hour)
	second, err := f.svc.Create(context.Background(), user, domain.CreateOrganizationRequest{Name: "Second"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC), second.CreatedAt)

	def, err := f.svc.ResolveDefaultForUser(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, "second", def.Slug)
}

func TestCreateValidatesInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), "not-a-uuid", domain.CreateOrganizationRequest{Name: "Acme"})
	assert.ErrorIs(t, err, domain.ErrInvalidUser)

	_, err = f.svc.Create(context.Background(), uuid.NewString(), domain.CreateOrganizationRequest{Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = f.svc.Create(context.Background(), uuid.NewString(), domain.CreateOrganizationRequest{Name: "Acme", Slug: "Not A Slug"})
	assert.ErrorIs(t, err, domain.ErrInvalidSlug)
}
