package webhook

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	billingdomain "github.com/smallbiznis/launchpad/internal/billing/domain"
	"github.com/smallbiznis/launchpad/internal/clock"
	"github.com/smallbiznis/launchpad/internal/config"
	"github.com/smallbiznis/launchpad/internal/observability/metrics"
	"github.com/smallbiznis/launchpad/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	GenID   *snowflake.Node
	Gateway domain.Gateway
	Billing billingdomain.Service
	Repo    domain.WebhookRepository
	Policy  *config.WebhookConfigHolder
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	clock   clock.Clock
	genID   *snowflake.Node
	gateway domain.Gateway
	billing billingdomain.Service
	repo    domain.WebhookRepository
	policy  *config.WebhookConfigHolder
	metrics *metrics.Metrics
}

func NewService(p Params) domain.WebhookService {
	return &Service{
		log:     p.Log.Named("payment.webhook"),
		clock:   p.Clock,
		genID:   p.GenID,
		gateway: p.Gateway,
		billing: p.Billing,
		repo:    p.Repo,
		policy:  p.Policy,
		metrics: p.Metrics,
	}
}

// Ingest verifies a delivery, applies it and records it in the ledger. The
// ledger write happens only after the billing state was updated, so a failed
// delivery is retried by the gateway and reapplied in full.
func (s *Service) Ingest(ctx context.Context, payload []byte, signature string) (*domain.IngestResult, error) {
	provider := s.gateway.Provider()
	receivedAt := s.clock.Now()
	deliveryID := ulid.Make().String()

	event, err := s.gateway.ConstructEvent(payload, signature)
	if err != nil {
		s.log.Warn("webhook rejected", zap.String("delivery_id", deliveryID), zap.Error(err))
		s.metrics.RecordWebhookEvent(ctx, provider, "unknown", "rejected")
		return nil, err
	}

	log := s.log.With(
		zap.String("delivery_id", deliveryID),
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
	)

	// Events already in the ledger are still applied again.
	previousDeliveryID := ""
	prior, err := s.repo.FindByProviderEventID(ctx, event.ID)
	switch {
	case err != nil:
		log.Warn("webhook ledger lookup failed", zap.Error(err))
	case prior != nil:
		previousDeliveryID = prior.DeliveryID
		log.Info("webhook redelivery",
			zap.String("previous_delivery_id", prior.DeliveryID),
			zap.Time("previous_processed_at", prior.ProcessedAt),
		)
	}

	status, err := s.dispatch(ctx, event)
	if err != nil {
		outcome := "failed"
		if errors.Is(err, domain.ErrUnhandledEventType) {
			outcome = "unhandled"
		}
		log.Error("webhook handling failed", zap.Error(err))
		s.metrics.RecordWebhookEvent(ctx, provider, event.Type, outcome)
		return nil, err
	}

	inserted, err := s.repo.Record(ctx, domain.WebhookEvent{
		ID:              s.genID.Generate(),
		Provider:        provider,
		ProviderEventID: event.ID,
		EventType:       event.Type,
		DeliveryID:      deliveryID,
		Status:          status,
		ReceivedAt:      receivedAt,
		ProcessedAt:     s.clock.Now(),
	})
	if err != nil {
		// Billing state is already applied; the ledger is audit only.
		log.Warn("webhook ledger write failed", zap.Error(err))
	}

	redelivery := previousDeliveryID != "" || (err == nil && !inserted)
	s.metrics.RecordWebhookEvent(ctx, provider, event.Type, string(status))
	log.Info("webhook handled", zap.String("status", string(status)), zap.Bool("redelivery", redelivery))

	return &domain.IngestResult{
		EventID:            event.ID,
		EventType:          event.Type,
		DeliveryID:         deliveryID,
		PreviousDeliveryID: previousDeliveryID,
		Status:             status,
		Redelivery:         redelivery,
	}, nil
}

func (s *Service) dispatch(ctx context.Context, event *domain.Event) (domain.WebhookEventStatus, error) {
	switch event.Type {
	case domain.EventProductCreated, domain.EventProductUpdated:
		if event.Product == nil {
			return "", domain.ErrInvalidPayload
		}
		return domain.WebhookEventProcessed, s.billing.UpsertProduct(ctx, *event.Product)
	case domain.EventProductDeleted:
		if event.Product == nil {
			return "", domain.ErrInvalidPayload
		}
		return domain.WebhookEventProcessed, s.billing.DeactivateProduct(ctx, event.Product.ID)
	case domain.EventPriceCreated, domain.EventPriceUpdated:
		if event.Price == nil {
			return "", domain.ErrInvalidPayload
		}
		return domain.WebhookEventProcessed, s.billing.UpsertPrice(ctx, *event.Price)
	case domain.EventPriceDeleted:
		if event.Price == nil {
			return "", domain.ErrInvalidPayload
		}
		return domain.WebhookEventProcessed, s.billing.DeactivatePrice(ctx, event.Price.ID)
	case domain.EventSubscriptionCreated, domain.EventSubscriptionUpdated, domain.EventSubscriptionDeleted:
		if event.Subscription == nil {
			return "", domain.ErrInvalidPayload
		}
		return domain.WebhookEventProcessed, s.billing.ManageSubscription(ctx, *event.Subscription, event.CreatedAt)
	}

	if s.policy != nil && s.policy.Get().Ignores(event.Type) {
		return domain.WebhookEventIgnored, nil
	}
	return "", fmt.Errorf("%w: %s", domain.ErrUnhandledEventType, event.Type)
}
