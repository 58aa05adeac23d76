package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/smallbiznis/launchpad/internal/auth/domain"
	"github.com/smallbiznis/launchpad/internal/auth/mocks"
	"github.com/smallbiznis/launchpad/internal/clock"
	organizationdomain "github.com/smallbiznis/launchpad/internal/organization/domain"
	organizationrepo "github.com/smallbiznis/launchpad/internal/organization/repository"
	organizationservice "github.com/smallbiznis/launchpad/internal/organization/service"
	profiledomain "github.com/smallbiznis/launchpad/internal/profile/domain"
	profilerepo "github.com/smallbiznis/launchpad/internal/profile/repository"
	"github.com/smallbiznis/launchpad/pkg/db"
	"github.com/smallbiznis/launchpad/pkg/fielderr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc      domain.Service
	identity *mocks.MockIdentityProvider
	profiles profiledomain.Repository
	orgSvc   organizationdomain.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	conn := db.NewTest(t,
		&profiledomain.Profile{},
		&organizationdomain.Organization{},
		&organizationdomain.OrganizationMember{},
	)
	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	f := fixture{
		identity: mocks.NewMockIdentityProvider(ctrl),
		profiles: profilerepo.NewRepository(conn),
	}
	f.orgSvc = organizationservice.NewService(organizationservice.Params{
		DB: conn, Repo: organizationrepo.NewRepository(conn), GenID: node, Log: zap.NewNop(),
	})
	f.svc = New(Params{
		Log:      zap.NewNop(),
		Clock:    clock.NewFakeClock(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)),
		Identity: f.identity,
		Profiles: f.profiles,
		OrgSvc:   f.orgSvc,
	})
	return f
}

func TestSignUpValidatesFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SignUp(context.Background(), domain.SignUpRequest{Email: "not-an-email", Password: "123"})

	errs, ok := fielderr.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Invalid email address"}, errs["email"])
	assert.Equal(t, []string{"Must be at least 6 characters"}, errs["password"])
}

func TestSignUpCreatesProfile(t *testing.T) {
	f := newFixture(t)
	user := uuid.NewString()
	f.identity.EXPECT().
		SignUp(gomock.Any(), "ada@example.com", "secret1", "Ada").
		Return(&domain.User{ID: user, Email: "ada@example.com"}, nil)

	created, err := f.svc.SignUp(context.Background(), domain.SignUpRequest{
		Email: " Ada@Example.com ", Password: "secret1", Name: "Ada",
	})
	require.NoError(t, err)
	assert.Equal(t, user, created.ID)

	profile, err := f.profiles.FindByID(context.Background(), user)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "ada@example.com", profile.Email)
	require.NotNil(t, profile.Username)
	assert.Equal(t, "Ada", *profile.Username)
}

func TestSignUpExistingEmail(t *testing.T) {
	f := newFixture(t)
	f.identity.EXPECT().SignUp(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, domain.ErrUserExists)

	_, err := f.svc.SignUp(context.Background(), domain.SignUpRequest{Email: "ada@example.com", Password: "secret1"})

	errs, ok := fielderr.As(err)
	require.True(t, ok)
	assert.Contains(t, errs, "email")
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newFixture(t)
	f.identity.EXPECT().SignInWithPassword(gomock.Any(), "ada@example.com", "secret1").Return(nil, domain.ErrInvalidCredentials)

	_, err := f.svc.Login(context.Background(), domain.LoginRequest{Email: "ada@example.com", Password: "secret1"})

	errs, ok := fielderr.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Invalid email or password"}, errs[fielderr.FormField])
}

func TestLoginUpstreamFailurePassesThrough(t *testing.T) {
	f := newFixture(t)
	f.identity.EXPECT().SignInWithPassword(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, domain.ErrUpstream)

	_, err := f.svc.Login(context.Background(), domain.LoginRequest{Email: "ada@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestStartOAuthUsesS256Challenge(t *testing.T) {
	f := newFixture(t)
	var challenge string
	f.identity.EXPECT().
		AuthorizeURL("github", "https://app.example.com/api/auth/callback", gomock.Any()).
		DoAndReturn(func(_, _, c string) (string, error) {
			challenge = c
			return "https://id.example.com/authorize", nil
		})

	start, err := f.svc.StartOAuth(context.Background(), "github", "https://app.example.com/api/auth/callback")
	require.NoError(t, err)
	assert.NotEmpty(t, start.CodeVerifier)
	assert.NotEmpty(t, challenge)
	assert.NotEqual(t, start.CodeVerifier, challenge)
}

func TestCompleteOAuthLandsOnDefaultOrganization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.NewString()
	require.NoError(t, f.profiles.Upsert(ctx, profiledomain.Profile{ID: user, Email: "ada@example.com"}))
	_, err := f.orgSvc.Create(ctx, user, organizationdomain.CreateOrganizationRequest{Name: "Acme"})
	require.NoError(t, err)

	session := &domain.Session{AccessToken: "at", User: domain.User{ID: user, Email: "ada@example.com"}}
	f.identity.EXPECT().ExchangeCode(gomock.Any(), "code", "verifier").Return(session, nil)

	landing, err := f.svc.CompleteOAuth(ctx, "code", "verifier")
	require.NoError(t, err)
	assert.Equal(t, "acme", landing.OrganizationSlug)
	assert.Equal(t, "at", landing.Session.AccessToken)
}

func TestConfirmEmailWithoutOrganization(t *testing.T) {
	f := newFixture(t)
	user := uuid.NewString()
	f.identity.EXPECT().VerifyOTP(gomock.Any(), "hash", "email").
		Return(&domain.Session{AccessToken: "at", User: domain.User{ID: user, Email: "ada@example.com"}}, nil)

	landing, err := f.svc.ConfirmEmail(context.Background(), "hash", "email")
	assert.ErrorIs(t, err, domain.ErrNoOrganization)
	require.NotNil(t, landing)
	assert.Empty(t, landing.OrganizationSlug)

	profile, err := f.profiles.FindByID(context.Background(), user)
	require.NoError(t, err)
	assert.NotNil(t, profile)
}

func TestCompleteOAuthRequiresCode(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CompleteOAuth(context.Background(), "", "verifier")
	assert.ErrorIs(t, err, domain.ErrInvalidCode)
}
