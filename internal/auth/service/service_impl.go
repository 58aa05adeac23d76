package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/smallbiznis/launchpad/internal/auth/domain"
	"github.com/smallbiznis/launchpad/internal/clock"
	organizationdomain "github.com/smallbiznis/launchpad/internal/organization/domain"
	profiledomain "github.com/smallbiznis/launchpad/internal/profile/domain"
	"github.com/smallbiznis/launchpad/pkg/fielderr"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	fieldEmail = "email"

	msgInvalidLogin = "Invalid email or password"
	msgEmailTaken   = "An account with this email already exists"
	msgSignUpFailed = "Could not create account"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	Identity domain.IdentityProvider
	Profiles profiledomain.Repository
	OrgSvc   organizationdomain.Service
}

type Service struct {
	log      *zap.Logger
	clock    clock.Clock
	identity domain.IdentityProvider
	profiles profiledomain.Repository
	orgSvc   organizationdomain.Service
	validate *validator.Validate
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("auth.service"),
		clock:    p.Clock,
		identity: p.Identity,
		profiles: p.Profiles,
		orgSvc:   p.OrgSvc,
		validate: newValidator(),
	}
}

func (s *Service) SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.User, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return nil, fieldErrors(err)
	}

	user, err := s.identity.SignUp(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserExists):
			return nil, fielderr.New(fieldEmail, msgEmailTaken)
		case errors.Is(err, domain.ErrInvalidCredentials):
			return nil, fielderr.Form(msgSignUpFailed)
		}
		return nil, err
	}

	if user.Email == "" {
		user.Email = req.Email
	}
	if user.Name == "" {
		user.Name = req.Name
	}
	if err := s.ensureProfile(ctx, *user); err != nil {
		return nil, err
	}

	s.log.Info("user signed up", zap.String("user_id", user.ID))
	return user, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.Session, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return nil, fieldErrors(err)
	}

	session, err := s.identity.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return nil, fielderr.Form(msgInvalidLogin)
		}
		return nil, err
	}
	return session, nil
}

func (s *Service) Logout(ctx context.Context, accessToken string) error {
	return s.identity.SignOut(ctx, accessToken)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*domain.Session, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, domain.ErrInvalidToken
	}
	return s.identity.RefreshSession(ctx, refreshToken)
}

func (s *Service) StartOAuth(ctx context.Context, provider, redirectTo string) (*domain.OAuthStart, error) {
	verifier := oauth2.GenerateVerifier()
	authURL, err := s.identity.AuthorizeURL(provider, redirectTo, oauth2.S256ChallengeFromVerifier(verifier))
	if err != nil {
		return nil, err
	}
	return &domain.OAuthStart{URL: authURL, CodeVerifier: verifier}, nil
}

func (s *Service) CompleteOAuth(ctx context.Context, code, codeVerifier string) (*domain.Landing, error) {
	if strings.TrimSpace(code) == "" || strings.TrimSpace(codeVerifier) == "" {
		return nil, domain.ErrInvalidCode
	}
	session, err := s.identity.ExchangeCode(ctx, code, codeVerifier)
	if err != nil {
		return nil, err
	}
	return s.land(ctx, session)
}

func (s *Service) ConfirmEmail(ctx context.Context, tokenHash, otpType string) (*domain.Landing, error) {
	if strings.TrimSpace(tokenHash) == "" || strings.TrimSpace(otpType) == "" {
		return nil, domain.ErrInvalidCode
	}
	session, err := s.identity.VerifyOTP(ctx, tokenHash, otpType)
	if err != nil {
		return nil, err
	}
	return s.land(ctx, session)
}

// land finishes a redirect-based sign-in by making sure the profile exists
// and picking the organization to open.
func (s *Service) land(ctx context.Context, session *domain.Session) (*domain.Landing, error) {
	if session.User.ID == "" {
		return nil, fmt.Errorf("%w: session without user", domain.ErrUpstream)
	}
	if err := s.ensureProfile(ctx, session.User); err != nil {
		return nil, err
	}

	org, err := s.orgSvc.ResolveDefaultForUser(ctx, session.User.ID)
	if err != nil {
		if errors.Is(err, organizationdomain.ErrNotFound) {
			return &domain.Landing{Session: session}, domain.ErrNoOrganization
		}
		return nil, err
	}
	return &domain.Landing{Session: session, OrganizationSlug: org.Slug}, nil
}

func (s *Service) ensureProfile(ctx context.Context, user domain.User) error {
	if user.Email == "" {
		existing, err := s.profiles.FindByID(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("find profile: %w", err)
		}
		if existing != nil {
			return nil
		}
	}

	now := s.clock.Now()
	profile := profiledomain.Profile{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if user.Name != "" {
		name := user.Name
		profile.Username = &name
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
