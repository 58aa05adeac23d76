package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/smallbiznis/launchpad/internal/authorization"
	"github.com/smallbiznis/launchpad/internal/checkout/domain"
	"github.com/smallbiznis/launchpad/internal/config"
	organizationdomain "github.com/smallbiznis/launchpad/internal/organization/domain"
	paymentdomain "github.com/smallbiznis/launchpad/internal/payment/domain"
	"github.com/smallbiznis/launchpad/pkg/db"
	"github.com/smallbiznis/launchpad/pkg/fielderr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type orgMock struct {
	mock.Mock
}

func (m *orgMock) ResolveBySlug(ctx context.Context, slug, userID string) (*organizationdomain.Resolved, error) {
	args := m.Called(ctx, slug, userID)
	resolved, _ := args.Get(0).(*organizationdomain.Resolved)
	return resolved, args.Error(1)
}

func (m *orgMock) ResolveDefaultForUser(ctx context.Context, userID string) (*organizationdomain.Organization, error) {
	args := m.Called(ctx, userID)
	org, _ := args.Get(0).(*organizationdomain.Organization)
	return org, args.Error(1)
}

func (m *orgMock) Create(ctx context.Context, userID string, req organizationdomain.CreateOrganizationRequest) (*organizationdomain.Organization, error) {
	args := m.Called(ctx, userID, req)
	org, _ := args.Get(0).(*organizationdomain.Organization)
	return org, args.Error(1)
}

type customerStub struct {
	id    string
	err   error
	calls int
}

func (c *customerStub) UpsertProduct(context.Context, paymentdomain.Product) error { return nil }
func (c *customerStub) DeactivateProduct(context.Context, string) error            { return nil }
func (c *customerStub) UpsertPrice(context.Context, paymentdomain.Price) error     { return nil }
func (c *customerStub) DeactivatePrice(context.Context, string) error              { return nil }
func (c *customerStub) ManageSubscription(context.Context, paymentdomain.Subscription, time.Time) error {
	return nil
}

func (c *customerStub) CreateOrRetrieveCustomer(context.Context, string) (string, error) {
	c.calls++
	return c.id, c.err
}

type gatewayStub struct {
	input   paymentdomain.CheckoutInput
	session *paymentdomain.CheckoutSession
	err     error
}

func (g *gatewayStub) Provider() string { return paymentdomain.ProviderStripe }

func (g *gatewayStub) CreateCustomer(context.Context, paymentdomain.CustomerInput) (string, error) {
	return "", errors.New("not implemented")
}

func (g *gatewayStub) CreateCheckoutSession(_ context.Context, in paymentdomain.CheckoutInput) (*paymentdomain.CheckoutSession, error) {
	g.input = in
	return g.session, g.err
}

func (g *gatewayStub) ConstructEvent([]byte, string) (*paymentdomain.Event, error) {
	return nil, errors.New("not implemented")
}

type fixture struct {
	svc     domain.Service
	orgs    *orgMock
	billing *customerStub
	gateway *gatewayStub
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	enforcer, err := authorization.NewEnforcer(db.NewTest(t))
	require.NoError(t, err)

	f := fixture{
		orgs:    &orgMock{},
		billing: &customerStub{id: "cus_1"},
		gateway: &gatewayStub{session: &paymentdomain.CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.test/cs_1"}},
	}
	f.svc = NewService(Params{
		Cfg:      config.Config{SiteURL: "https://app.example.com"},
		Log:      zap.NewNop(),
		OrgSvc:   f.orgs,
		AuthzSvc: authorization.NewService(authorization.Params{Log: zap.NewNop(), Enforcer: enforcer}),
		Billing:  f.billing,
		Gateway:  f.gateway,
	})
	return f
}

func resolved(slug string, role organizationdomain.Role) *organizationdomain.Resolved {
	return &organizationdomain.Resolved{
		Organization: organizationdomain.Organization{ID: 42, Name: "Acme", Slug: slug},
		Role:         role,
	}
}

func TestCreateCheckoutSessionForMember(t *testing.T) {
	f := newFixture(t)
	user := uuid.NewString()
	f.orgs.On("ResolveBySlug", mock.Anything, "acme", user).Return(resolved("acme", organizationdomain.RoleMember), nil)

	url, err := f.svc.CreateCheckoutSession(context.Background(), domain.CreateCheckoutRequest{
		PriceID: "price_pro", OrganizationSlug: "acme",
	}, user)
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.stripe.test/cs_1", url)
	assert.Equal(t, "cus_1", f.gateway.input.CustomerID)
	assert.Equal(t, "price_pro", f.gateway.input.PriceID)
	assert.Equal(t, "acme", f.gateway.input.OrganizationSlug)
	assert.Equal(t, "https://app.example.com/acme", f.gateway.input.SuccessURL)
	assert.Equal(t, "https://app.example.com/acme/pricing", f.gateway.input.CancelURL)
}

func TestCreateCheckoutSessionValidatesFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateCheckoutSession(context.Background(), domain.CreateCheckoutRequest{
		PriceID: "prod_1", OrganizationSlug: "Not A Slug",
	}, uuid.NewString())

	errs, ok := fielderr.As(err)
	require.True(t, ok)
	assert.Contains(t, errs, "price")
	assert.Contains(t, errs, "organizationSlug")
	f.orgs.AssertNotCalled(t, "ResolveBySlug", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateCheckoutSessionRequiresUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateCheckoutSession(context.Background(), domain.CreateCheckoutRequest{
		PriceID: "price_pro", OrganizationSlug: "acme",
	}, "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Zero(t, f.billing.calls)
}

func TestCreateCheckoutSessionHidesForeignOrganization(t *testing.T) {
	f := newFixture(t)
	user := uuid.NewString()
	f.orgs.On("ResolveBySlug", mock.Anything, "acme", user).Return(nil, organizationdomain.ErrUnauthorized)

	_, err := f.svc.CreateCheckoutSession(context.Background(), domain.CreateCheckoutRequest{
		PriceID: "price_pro", OrganizationSlug: "acme",
	}, user)

	errs, ok := fielderr.As(err)
	require.True(t, ok)
	assert.Equal(t, []string{"Organization not found"}, errs["organizationSlug"])
	assert.Zero(t, f.billing.calls)
	assert.Empty(t, f.gateway.input.PriceID)
}

func TestCreateCheckoutSessionMissingURL(t *testing.T) {
	f := newFixture(t)
	user := uuid.NewString()
	f.orgs.On("ResolveBySlug", mock.Anything, "acme", user).Return(resolved("acme", organizationdomain.RoleOwner), nil)
	f.gateway.session = &paymentdomain.CheckoutSession{ID: "cs_2"}

	_, err := f.svc.CreateCheckoutSession(context.Background(), domain.CreateCheckoutRequest{
		PriceID: "price_pro", OrganizationSlug: "acme",
	}, user)
	assert.ErrorIs(t, err, paymentdomain.ErrMissingCheckoutURL)
}

func TestCreateCheckoutSessionPropagatesCustomerFailure(t *testing.T) {
	f := newFixture(t)
	user := uuid.NewString()
	f.orgs.On("ResolveBySlug", mock.Anything, "acme", user).Return(resolved("acme", organizationdomain.RoleAdmin), nil)
	f.billing.err = paymentdomain.ErrUpstream

	_, err := f.svc.CreateCheckoutSession(context.Background(), domain.CreateCheckoutRequest{
		PriceID: "price_pro", OrganizationSlug: "acme",
	}, user)
	assert.ErrorIs(t, err, paymentdomain.ErrUpstream)
	assert.Empty(t, f.gateway.input.PriceID)
}
