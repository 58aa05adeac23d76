// Package domain contains core types for the auth actions.
package domain

import "time"

// User is the identity-provider account.
type User struct {
	ID    string
	Email string
	Name  string
}

// Session is a provider-issued token pair.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         User
}

// Claims are the verified contents of an access token.
type Claims struct {
	UserID    string
	Email     string
	Role      string
	ExpiresAt time.Time
}

type SignUpRequest struct {
	Email    string `form:"email" json:"email" validate:"required,email,max=255"`
	Password string `form:"password" json:"password" validate:"required,min=6,max=255"`
	Name     string `form:"name" json:"name" validate:"omitempty,max=255"`
}

type LoginRequest struct {
	Email    string `form:"email" json:"email" validate:"required,email,max=255"`
	Password string `form:"password" json:"password" validate:"required,min=6,max=255"`
}

// OAuthStart is what the browser needs to begin a provider sign-in.
type OAuthStart struct {
	URL          string
	CodeVerifier string
}

// Landing is the result of a completed sign-in round trip: the session to
// persist and the organization slug to land on.
type Landing struct {
	Session          *Session
	OrganizationSlug string
}
