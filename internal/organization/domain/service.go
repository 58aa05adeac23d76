package domain

import (
	"context"
	"errors"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

type Service interface {
	// ResolveBySlug returns the organization addressed by slug together with
	// the caller's role in it.
	ResolveBySlug(ctx context.Context, slug, userID string) (*Resolved, error)
	ResolveDefaultForUser(ctx context.Context, userID string) (*Organization, error)
	Create(ctx context.Context, userID string, req CreateOrganizationRequest) (*Organization, error)
}

type Resolved struct {
	Organization Organization
	Role         Role
}

type CreateOrganizationRequest struct {
	Name string
	Slug string
}

var (
	ErrNotFound     = errors.New("organization_not_found")
	ErrUnauthorized = errors.New("organization_unauthorized")
	ErrInvalidUser  = errors.New("invalid_user")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidSlug  = errors.New("invalid_slug")
	ErrSlugTaken    = errors.New("slug_taken")
)
