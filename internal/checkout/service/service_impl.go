package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/smallbiznis/launchpad/internal/authorization"
	billingdomain "github.com/smallbiznis/launchpad/internal/billing/domain"
	"github.com/smallbiznis/launchpad/internal/checkout/domain"
	"github.com/smallbiznis/launchpad/internal/config"
	"github.com/smallbiznis/launchpad/internal/observability/metrics"
	organizationdomain "github.com/smallbiznis/launchpad/internal/organization/domain"
	paymentdomain "github.com/smallbiznis/launchpad/internal/payment/domain"
	"github.com/smallbiznis/launchpad/pkg/fielderr"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	fieldPrice            = "price"
	fieldOrganizationSlug = "organizationSlug"
	pricePrefix           = "price_"
)

type Params struct {
	fx.In

	Cfg      config.Config
	Log      *zap.Logger
	OrgSvc   organizationdomain.Service
	AuthzSvc authorization.Service
	Billing  billingdomain.Service
	Gateway  paymentdomain.Gateway
	Metrics  *metrics.Metrics `optional:"true"`
}

type service struct {
	siteURL  string
	log      *zap.Logger
	orgSvc   organizationdomain.Service
	authzSvc authorization.Service
	billing  billingdomain.Service
	gateway  paymentdomain.Gateway
	metrics  *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &service{
		siteURL:  p.Cfg.SiteURL,
		log:      p.Log.Named("checkout.service"),
		orgSvc:   p.OrgSvc,
		authzSvc: p.AuthzSvc,
		billing:  p.Billing,
		gateway:  p.Gateway,
		metrics:  p.Metrics,
	}
}

func (s *service) CreateCheckoutSession(ctx context.Context, req domain.CreateCheckoutRequest, userID string) (string, error) {
	priceID := strings.TrimSpace(req.PriceID)
	orgSlug := strings.TrimSpace(req.OrganizationSlug)

	errs := fielderr.Errors{}
	if !strings.HasPrefix(priceID, pricePrefix) || len(priceID) == len(pricePrefix) {
		errs.Add(fieldPrice, "Invalid price")
	}
	if !slug.IsSlug(orgSlug) {
		errs.Add(fieldOrganizationSlug, "Invalid organization")
	}
	if errs.Any() {
		return "", errs
	}

	if strings.TrimSpace(userID) == "" {
		return "", domain.ErrUnauthenticated
	}

	resolved, err := s.orgSvc.ResolveBySlug(ctx, orgSlug, userID)
	if err != nil {
		if errors.Is(err, organizationdomain.ErrNotFound) || errors.Is(err, organizationdomain.ErrUnauthorized) {
			return "", organizationNotFound()
		}
		return "", err
	}

	if err := s.authzSvc.Authorize(ctx, resolved.Role, authorization.ObjectSubscription, authorization.ActionCheckoutCreate); err != nil {
		if errors.Is(err, authorization.ErrForbidden) || errors.Is(err, authorization.ErrInvalidRole) {
			return "", organizationNotFound()
		}
		return "", err
	}

	customerID, err := s.billing.CreateOrRetrieveCustomer(ctx, userID)
	if err != nil {
		s.metrics.RecordCheckoutSession(ctx, "failed")
		return "", fmt.Errorf("checkout customer: %w", err)
	}

	orgSlug = resolved.Organization.Slug
	session, err := s.gateway.CreateCheckoutSession(ctx, paymentdomain.CheckoutInput{
		CustomerID:       customerID,
		PriceID:          priceID,
		OrganizationSlug: orgSlug,
		SuccessURL:       fmt.Sprintf("%s/%s", s.siteURL, orgSlug),
		CancelURL:        fmt.Sprintf("%s/%s/pricing", s.siteURL, orgSlug),
	})
	if err != nil {
		s.metrics.RecordCheckoutSession(ctx, "failed")
		return "", fmt.Errorf("checkout session: %w", err)
	}
	if session == nil || session.URL == "" {
		s.metrics.RecordCheckoutSession(ctx, "failed")
		return "", paymentdomain.ErrMissingCheckoutURL
	}

	s.metrics.RecordCheckoutSession(ctx, "created")
	s.log.Info("checkout session created",
		zap.String("org_id", resolved.Organization.ID.String()),
		zap.String("price_id", priceID),
		zap.String("session_id", session.ID),
	)
	return session.URL, nil
}

func organizationNotFound() error {
	return fielderr.New(fieldOrganizationSlug, "Organization not found")
}
