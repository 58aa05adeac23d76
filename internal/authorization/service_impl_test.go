package authorization

import (
	"context"
	"testing"

	organizationdomain "github.com/smallbiznis/launchpad/internal/organization/domain"
	"github.com/smallbiznis/launchpad/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	enforcer, err := NewEnforcer(db.NewTest(t))
	require.NoError(t, err)
	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestAuthorizeRoleHierarchy(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, role := range []organizationdomain.Role{
		organizationdomain.RoleOwner,
		organizationdomain.RoleAdmin,
		organizationdomain.RoleMember,
	} {
		assert.NoError(t, svc.Authorize(ctx, role, ObjectSubscription, ActionCheckoutCreate), role)
		assert.NoError(t, svc.Authorize(ctx, role, ObjectPricing, ActionPricingView), role)
	}

	assert.NoError(t, svc.Authorize(ctx, organizationdomain.RoleOwner, ObjectSubscription, ActionSubscriptionManage))
	assert.ErrorIs(t, svc.Authorize(ctx, organizationdomain.RoleAdmin, ObjectSubscription, ActionSubscriptionManage), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, organizationdomain.RoleMember, ObjectSubscription, ActionSubscriptionManage), ErrForbidden)
}

func TestAuthorizeRejectsInvalidInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Authorize(ctx, "guest", ObjectPricing, ActionPricingView), ErrInvalidRole)
	assert.ErrorIs(t, svc.Authorize(ctx, organizationdomain.RoleOwner, " ", ActionPricingView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, organizationdomain.RoleOwner, ObjectPricing, ""), ErrInvalidAction)
}

func TestSeedPoliciesIsRepeatable(t *testing.T) {
	conn := db.NewTest(t)
	_, err := NewEnforcer(conn)
	require.NoError(t, err)
	enforcer, err := NewEnforcer(conn)
	require.NoError(t, err)

	policies, err := enforcer.GetPolicy()
	require.NoError(t, err)
	assert.Len(t, policies, 4)
}
