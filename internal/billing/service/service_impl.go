package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/launchpad/internal/billing/domain"
	"github.com/smallbiznis/launchpad/internal/cache"
	"github.com/smallbiznis/launchpad/internal/clock"
	"github.com/smallbiznis/launchpad/internal/config"
	customerdomain "github.com/smallbiznis/launchpad/internal/customer/domain"
	"github.com/smallbiznis/launchpad/internal/observability/metrics"
	organizationdomain "github.com/smallbiznis/launchpad/internal/organization/domain"
	paymentdomain "github.com/smallbiznis/launchpad/internal/payment/domain"
	pricedomain "github.com/smallbiznis/launchpad/internal/price/domain"
	productdomain "github.com/smallbiznis/launchpad/internal/product/domain"
	profiledomain "github.com/smallbiznis/launchpad/internal/profile/domain"
	"github.com/smallbiznis/launchpad/internal/ratelimit"
	subscriptiondomain "github.com/smallbiznis/launchpad/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const defaultCustomerLockTTL = 10 * time.Second

type Params struct {
	fx.In

	Cfg           config.Config
	Log           *zap.Logger
	Clock         clock.Clock
	Gateway       paymentdomain.Gateway
	OrgSvc        organizationdomain.Service
	Customers     customerdomain.Repository
	Profiles      profiledomain.Repository
	Products      productdomain.Repository
	Prices        pricedomain.Repository
	Subscriptions subscriptiondomain.Repository
	Locker        *ratelimit.Locker  `optional:"true"`
	Metrics       *metrics.Metrics   `optional:"true"`
	Catalog       cache.CatalogCache `optional:"true"`
}

type service struct {
	log           *zap.Logger
	clock         clock.Clock
	gateway       paymentdomain.Gateway
	orgSvc        organizationdomain.Service
	customers     customerdomain.Repository
	profiles      profiledomain.Repository
	products      productdomain.Repository
	prices        pricedomain.Repository
	subscriptions subscriptiondomain.Repository
	locker        *ratelimit.Locker
	lockTTL       time.Duration
	metrics       *metrics.Metrics
	catalog       cache.CatalogCache
}

func NewService(p Params) domain.Service {
	lockTTL := time.Duration(p.Cfg.Redis.CustomerLockTTLSeconds) * time.Second
	if lockTTL <= 0 {
		lockTTL = defaultCustomerLockTTL
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &service{
		log:           p.Log.Named("billing.service"),
		clock:         clk,
		gateway:       p.Gateway,
		orgSvc:        p.OrgSvc,
		customers:     p.Customers,
		profiles:      p.Profiles,
		products:      p.Products,
		prices:        p.Prices,
		subscriptions: p.Subscriptions,
		locker:        p.Locker,
		lockTTL:       lockTTL,
		metrics:       p.Metrics,
		catalog:       p.Catalog,
	}
}

func (s *service) UpsertProduct(ctx context.Context, in paymentdomain.Product) error {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return domain.ErrInvalidProduct
	}

	var image *string
	if len(in.Images) > 0 && strings.TrimSpace(in.Images[0]) != "" {
		first := in.Images[0]
		image = &first
	}

	err := s.products.Upsert(ctx, productdomain.Product{
		ID:          id,
		Active:      in.Active,
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    image,
		Metadata:    toJSONMap(in.Metadata),
		UpdatedAt:   s.clock.Now(),
	})
	if err != nil {
		return fmt.Errorf("upsert product %s: %w", id, err)
	}
	s.invalidateCatalog()
	s.log.Info("product upserted", zap.String("product_id", id))
	return nil
}

func (s *service) DeactivateProduct(ctx context.Context, productID string) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.ErrInvalidProduct
	}
	if err := s.products.Deactivate(ctx, productID, s.clock.Now()); err != nil {
		return fmt.Errorf("deactivate product %s: %w", productID, err)
	}
	s.invalidateCatalog()
	s.log.Info("product deactivated", zap.String("product_id", productID))
	return nil
}

func (s *service) UpsertPrice(ctx context.Context, in paymentdomain.Price) error {
	id := strings.TrimSpace(in.ID)
	productID := strings.TrimSpace(in.ProductID)
	if id == "" || productID == "" {
		return domain.ErrInvalidPrice
	}

	var amount int64
	if in.UnitAmount != nil {
		amount = *in.UnitAmount
	}

	err := s.prices.Upsert(ctx, pricedomain.Price{
		ID:              id,
		ProductID:       productID,
		Active:          in.Active,
		Description:     in.Nickname,
		Currency:        strings.ToLower(in.Currency),
		Type:            pricedomain.Type(in.Type),
		UnitAmount:      amount,
		Interval:        in.Interval,
		IntervalCount:   in.IntervalCount,
		TrialPeriodDays: in.TrialPeriodDays,
		Metadata:        toJSONMap(in.Metadata),
		UpdatedAt:       s.clock.Now(),
	})
	if err != nil {
		return fmt.Errorf("upsert price %s: %w", id, err)
	}
	s.invalidateCatalog()
	s.log.Info("price upserted", zap.String("price_id", id), zap.String("product_id", productID))
	return nil
}

func (s *service) DeactivatePrice(ctx context.Context, priceID string) error {
	priceID = strings.TrimSpace(priceID)
	if priceID == "" {
		return domain.ErrInvalidPrice
	}
	if err := s.prices.Deactivate(ctx, priceID, s.clock.Now()); err != nil {
		return fmt.Errorf("deactivate price %s: %w", priceID, err)
	}
	s.invalidateCatalog()
	s.log.Info("price deactivated", zap.String("price_id", priceID))
	return nil
}

func (s *service) ManageSubscription(ctx context.Context, in paymentdomain.Subscription, eventAt time.Time) error {
	if strings.TrimSpace(in.ID) == "" || strings.TrimSpace(in.CustomerID) == "" {
		return domain.ErrInvalidSubscription
	}
	if len(in.Items) == 0 || strings.TrimSpace(in.Items[0].PriceID) == "" {
		return fmt.Errorf("%w: subscription %s has no price", domain.ErrInvalidSubscription, in.ID)
	}

	customer, err := s.customers.FindByStripeCustomerID(ctx, in.CustomerID)
	if err != nil {
		return fmt.Errorf("find customer %s: %w", in.CustomerID, err)
	}
	if customer == nil {
		return fmt.Errorf("%w: %s", domain.ErrCustomerNotFound, in.CustomerID)
	}

	orgSlug := in.Metadata[domain.MetadataOrganizationSlug]
	resolved, err := s.orgSvc.ResolveBySlug(ctx, orgSlug, customer.ID)
	if err != nil {
		s.log.Warn("subscription organization not resolved",
			zap.String("subscription_id", in.ID),
			zap.String("organization_slug", orgSlug),
			zap.Error(err),
		)
		return fmt.Errorf("resolve organization for subscription %s: %w", in.ID, err)
	}

	status := subscriptiondomain.Status(in.Status)
	if !status.Valid() {
		s.log.Warn("unrecognized subscription status", zap.String("subscription_id", in.ID), zap.String("status", in.Status))
	}

	item := in.Items[0]
	var lastEventAt *time.Time
	if !eventAt.IsZero() {
		at := eventAt.UTC()
		lastEventAt = &at
	}

	applied, err := s.subscriptions.Upsert(ctx, subscriptiondomain.Subscription{
		ID:                 in.ID,
		UserID:             customer.ID,
		OrganizationID:     resolved.Organization.ID,
		PriceID:            item.PriceID,
		Status:             status,
		Quantity:           item.Quantity,
		CancelAtPeriodEnd:  in.CancelAtPeriodEnd,
		CancelAt:           optionalTime(in.CancelAt),
		CanceledAt:         optionalTime(in.CanceledAt),
		CurrentPeriodStart: domain.ToDateTime(in.CurrentPeriodStart),
		CurrentPeriodEnd:   domain.ToDateTime(in.CurrentPeriodEnd),
		Created:            domain.ToDateTime(in.Created),
		EndedAt:            optionalTime(in.EndedAt),
		TrialStart:         optionalTime(in.TrialStart),
		TrialEnd:           optionalTime(in.TrialEnd),
		Metadata:           toJSONMap(in.Metadata),
		LastEventAt:        lastEventAt,
	})
	if err != nil {
		return fmt.Errorf("upsert subscription %s: %w", in.ID, err)
	}
	if !applied {
		s.log.Info("stale subscription event skipped",
			zap.String("subscription_id", in.ID),
			zap.Time("event_at", eventAt),
		)
		return nil
	}

	s.log.Info("subscription synced",
		zap.String("subscription_id", in.ID),
		zap.String("org_id", resolved.Organization.ID.String()),
		zap.String("status", in.Status),
	)
	return nil
}

func (s *service) CreateOrRetrieveCustomer(ctx context.Context, userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if _, err := uuid.Parse(userID); err != nil {
		return "", domain.ErrInvalidUser
	}

	existing, err := s.customers.FindByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("find customer for user: %w", err)
	}
	if existing != nil {
		return existing.StripeCustomerID, nil
	}

	if s.locker != nil {
		key := "launchpad:lock:customer:" + userID
		token, ok, err := s.locker.Acquire(ctx, key, s.lockTTL, s.lockTTL)
		switch {
		case err != nil:
			s.log.Warn("customer lock unavailable", zap.Error(err))
		case ok:
			defer func() {
				if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
					s.log.Warn("customer lock release failed", zap.Error(err))
				}
			}()
			existing, err := s.customers.FindByUserID(ctx, userID)
			if err != nil {
				return "", fmt.Errorf("find customer for user: %w", err)
			}
			if existing != nil {
				return existing.StripeCustomerID, nil
			}
		}
	}

	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("find profile: %w", err)
	}
	if profile == nil {
		return "", domain.ErrProfileMissing
	}

	name := ""
	if profile.Username != nil {
		name = *profile.Username
	}
	gatewayID, err := s.gateway.CreateCustomer(ctx, paymentdomain.CustomerInput{
		UserID: userID,
		Email:  profile.Email,
		Name:   name,
	})
	if err != nil {
		return "", err
	}

	inserted, err := s.customers.Insert(ctx, customerdomain.Customer{
		ID:               userID,
		StripeCustomerID: gatewayID,
		CreatedAt:        s.clock.Now(),
	})
	if err != nil {
		return "", fmt.Errorf("insert customer: %w", err)
	}
	if !inserted {
		winner, err := s.customers.FindByUserID(ctx, userID)
		if err != nil {
			return "", fmt.Errorf("find customer for user: %w", err)
		}
		if winner == nil {
			return "", errors.New("customer_conflict_without_row")
		}
		s.log.Warn("orphaned gateway customer after concurrent provisioning",
			zap.String("orphan_customer_id", gatewayID),
			zap.String("customer_id", winner.StripeCustomerID),
		)
		return winner.StripeCustomerID, nil
	}

	s.metrics.RecordCustomerCreated(ctx, s.gateway.Provider())
	s.log.Info("customer created", zap.String("customer_id", gatewayID))
	return gatewayID, nil
}

func optionalTime(secs *int64) *time.Time {
	if secs == nil {
		return nil
	}
	t := domain.ToDateTime(*secs)
	return &t
}

func toJSONMap(in map[string]string) datatypes.JSONMap {
	out := datatypes.JSONMap{}
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s *service) invalidateCatalog() {
	if s.catalog != nil {
		s.catalog.Invalidate()
	}
}
