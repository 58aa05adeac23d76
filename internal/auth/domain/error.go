package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidProvider    = errors.New("invalid provider")
	ErrInvalidCode        = errors.New("invalid code")
	ErrNotConfigured      = errors.New("identity provider not configured")
	ErrUpstream           = errors.New("identity provider error")
	ErrNoOrganization     = errors.New("no organization")
)
