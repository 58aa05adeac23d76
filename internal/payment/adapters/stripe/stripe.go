package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/launchpad/internal/config"
	paymentdomain "github.com/smallbiznis/launchpad/internal/payment/domain"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
)

type Options struct {
	SecretKey     string
	WebhookSecret string
	// APIBaseURL overrides the Stripe API endpoint, used against stripe-mock
	// and in tests.
	APIBaseURL string
}

type Adapter struct {
	api           *client.API
	webhookSecret string
	log           *zap.Logger
}

// New builds the adapter from application config.
func New(cfg config.Config, log *zap.Logger) paymentdomain.Gateway {
	return NewWithOptions(Options{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
	}, log)
}

func NewWithOptions(opts Options, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	adapter := &Adapter{
		webhookSecret: strings.TrimSpace(opts.WebhookSecret),
		log:           log.Named("payment.stripe"),
	}

	key := strings.TrimSpace(opts.SecretKey)
	if key == "" {
		return adapter
	}

	var backends *stripe.Backends
	if baseURL := strings.TrimSpace(opts.APIBaseURL); baseURL != "" {
		backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL:               stripe.String(baseURL),
			MaxNetworkRetries: stripe.Int64(0),
		})
		backends = &stripe.Backends{API: backend, Connect: backend, Uploads: backend}
	}
	api := &client.API{}
	api.Init(key, backends)
	adapter.api = api
	return adapter
}

func (a *Adapter) Provider() string {
	return paymentdomain.ProviderStripe
}

func (a *Adapter) CreateCustomer(ctx context.Context, input paymentdomain.CustomerInput) (string, error) {
	if a.api == nil {
		return "", paymentdomain.ErrNotConfigured
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(input.Email),
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		params.Name = stripe.String(name)
	}
	params.Context = ctx
	params.AddMetadata("userId", input.UserID)

	customer, err := a.api.Customers.New(params)
	if err != nil {
		return "", wrapStripeError("create customer", err)
	}
	return customer.ID, nil
}

func (a *Adapter) CreateCheckoutSession(ctx context.Context, input paymentdomain.CheckoutInput) (*paymentdomain.CheckoutSession, error) {
	if a.api == nil {
		return nil, paymentdomain.ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		Customer:                 stripe.String(input.CustomerID),
		PaymentMethodTypes:       stripe.StringSlice([]string{"card"}),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
		CustomerUpdate: &stripe.CheckoutSessionCustomerUpdateParams{
			Name:     stripe.String("auto"),
			Address:  stripe.String("auto"),
			Shipping: stripe.String("auto"),
		},
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(input.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		Mode:                stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		AllowPromotionCodes: stripe.Bool(true),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"organizationSlug": input.OrganizationSlug},
		},
		SuccessURL: stripe.String(input.SuccessURL),
		CancelURL:  stripe.String(input.CancelURL),
	}
	params.Context = ctx

	session, err := a.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, wrapStripeError("create checkout session", err)
	}
	if strings.TrimSpace(session.URL) == "" {
		return nil, paymentdomain.ErrMissingCheckoutURL
	}
	return &paymentdomain.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (a *Adapter) ConstructEvent(payload []byte, signature string) (*paymentdomain.Event, error) {
	if a.webhookSecret == "" {
		return nil, paymentdomain.ErrMissingWebhookSecret
	}
	if strings.TrimSpace(signature) == "" {
		return nil, paymentdomain.ErrMissingSignature
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, a.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", paymentdomain.ErrInvalidSignature, err)
	}
	if strings.TrimSpace(event.ID) == "" || event.Data == nil {
		return nil, paymentdomain.ErrInvalidPayload
	}

	out := &paymentdomain.Event{
		ID:        event.ID,
		Type:      string(event.Type),
		CreatedAt: time.Unix(event.Created, 0).UTC(),
	}

	switch {
	case strings.HasPrefix(out.Type, "product."):
		out.Product, err = decodeProduct(event.Data.Raw)
	case strings.HasPrefix(out.Type, "price."):
		out.Price, err = decodePrice(event.Data.Raw)
	case strings.HasPrefix(out.Type, "customer.subscription."):
		out.Subscription, err = decodeSubscription(event.Data.Raw)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func wrapStripeError(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return fmt.Errorf("%w: %s: %s (status %d, code %s)", paymentdomain.ErrUpstream, op, stripeErr.Msg, stripeErr.HTTPStatusCode, stripeErr.Code)
	}
	return fmt.Errorf("%w: %s: %v", paymentdomain.ErrUpstream, op, err)
}

// expandable decodes a field that is either an id string or an expanded
// object carrying an id.
type expandable struct {
	ID string
}

func (e *expandable) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		return nil
	case strings.HasPrefix(trimmed, `"`):
		return json.Unmarshal(data, &e.ID)
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	e.ID = obj.ID
	return nil
}

type stripeProduct struct {
	ID          string            `json:"id"`
	Active      bool              `json:"active"`
	Name        string            `json:"name"`
	Description *string           `json:"description"`
	Images      []string          `json:"images"`
	Metadata    map[string]string `json:"metadata"`
}

type stripeRecurring struct {
	Interval        *string `json:"interval"`
	IntervalCount   *int64  `json:"interval_count"`
	TrialPeriodDays *int64  `json:"trial_period_days"`
}

type stripePrice struct {
	ID         string            `json:"id"`
	Product    expandable        `json:"product"`
	Active     bool              `json:"active"`
	Currency   string            `json:"currency"`
	Nickname   *string           `json:"nickname"`
	Type       string            `json:"type"`
	UnitAmount *int64            `json:"unit_amount"`
	Recurring  *stripeRecurring  `json:"recurring"`
	Metadata   map[string]string `json:"metadata"`
}

type stripeSubscriptionItem struct {
	Price              expandable `json:"price"`
	Quantity           int64      `json:"quantity"`
	CurrentPeriodStart int64      `json:"current_period_start"`
	CurrentPeriodEnd   int64      `json:"current_period_end"`
}

type stripeSubscription struct {
	ID                 string            `json:"id"`
	Customer           expandable        `json:"customer"`
	Status             string            `json:"status"`
	Metadata           map[string]string `json:"metadata"`
	CancelAtPeriodEnd  bool              `json:"cancel_at_period_end"`
	CancelAt           *int64            `json:"cancel_at"`
	CanceledAt         *int64            `json:"canceled_at"`
	Created            int64             `json:"created"`
	CurrentPeriodStart int64             `json:"current_period_start"`
	CurrentPeriodEnd   int64             `json:"current_period_end"`
	EndedAt            *int64            `json:"ended_at"`
	TrialStart         *int64            `json:"trial_start"`
	TrialEnd           *int64            `json:"trial_end"`
	Items              struct {
		Data []stripeSubscriptionItem `json:"data"`
	} `json:"items"`
}

func decodeProduct(raw json.RawMessage) (*paymentdomain.Product, error) {
	var p stripeProduct
	if err := json.Unmarshal(raw, &p); err != nil || strings.TrimSpace(p.ID) == "" {
		return nil, paymentdomain.ErrInvalidPayload
	}
	return &paymentdomain.Product{
		ID:          p.ID,
		Active:      p.Active,
		Name:        p.Name,
		Description: p.Description,
		Images:      p.Images,
		Metadata:    p.Metadata,
	}, nil
}

func decodePrice(raw json.RawMessage) (*paymentdomain.Price, error) {
	var p stripePrice
	if err := json.Unmarshal(raw, &p); err != nil || strings.TrimSpace(p.ID) == "" {
		return nil, paymentdomain.ErrInvalidPayload
	}
	out := &paymentdomain.Price{
		ID:         p.ID,
		ProductID:  p.Product.ID,
		Active:     p.Active,
		Currency:   p.Currency,
		Nickname:   p.Nickname,
		Type:       p.Type,
		UnitAmount: p.UnitAmount,
		Metadata:   p.Metadata,
	}
	if p.Recurring != nil {
		out.Interval = p.Recurring.Interval
		out.IntervalCount = p.Recurring.IntervalCount
		out.TrialPeriodDays = p.Recurring.TrialPeriodDays
	}
	return out, nil
}

func decodeSubscription(raw json.RawMessage) (*paymentdomain.Subscription, error) {
	var s stripeSubscription
	if err := json.Unmarshal(raw, &s); err != nil || strings.TrimSpace(s.ID) == "" {
		return nil, paymentdomain.ErrInvalidPayload
	}
	out := &paymentdomain.Subscription{
		ID:                 s.ID,
		CustomerID:         s.Customer.ID,
		Status:             s.Status,
		Metadata:           s.Metadata,
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
		CancelAt:           s.CancelAt,
		CanceledAt:         s.CanceledAt,
		Created:            s.Created,
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		EndedAt:            s.EndedAt,
		TrialStart:         s.TrialStart,
		TrialEnd:           s.TrialEnd,
	}
	for _, item := range s.Items.Data {
		out.Items = append(out.Items, paymentdomain.SubscriptionItem{
			PriceID:  item.Price.ID,
			Quantity: item.Quantity,
		})
	}
	// Newer API versions report billing periods per item only.
	if len(s.Items.Data) > 0 {
		first := s.Items.Data[0]
		if out.CurrentPeriodStart == 0 {
			out.CurrentPeriodStart = first.CurrentPeriodStart
		}
		if out.CurrentPeriodEnd == 0 {
			out.CurrentPeriodEnd = first.CurrentPeriodEnd
		}
	}
	return out, nil
}
