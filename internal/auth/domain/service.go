package domain

import "context"

//go:generate mockgen -source=service.go -destination=../mocks/mock_identity.go -package=mocks

// IdentityProvider is the hosted authentication backend.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password, name string) (*User, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)
	ExchangeCode(ctx context.Context, authCode, codeVerifier string) (*Session, error)
	VerifyOTP(ctx context.Context, tokenHash, otpType string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
	AuthorizeURL(provider, redirectTo, codeChallenge string) (string, error)
}

type Service interface {
	SignUp(ctx context.Context, req SignUpRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*Session, error)
	Logout(ctx context.Context, accessToken string) error
	StartOAuth(ctx context.Context, provider, redirectTo string) (*OAuthStart, error)
	CompleteOAuth(ctx context.Context, code, codeVerifier string) (*Landing, error)
	ConfirmEmail(ctx context.Context, tokenHash, otpType string) (*Landing, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
}
