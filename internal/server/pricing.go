package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/launchpad/internal/authorization"
	subscriptiondomain "github.com/smallbiznis/launchpad/internal/subscription/domain"
)

// GetPricing lists the active catalog for an organization page. Members
// allowed to view subscriptions also get the organization's subscriptions.
func (s *Server) GetPricing(c *gin.Context) {
	ctx := c.Request.Context()
	userID := userIDFromContext(c)

	resolved, err := s.orgSvc.ResolveBySlug(ctx, strings.TrimSpace(c.Param("slug")), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.authzSvc.Authorize(ctx, resolved.Role, authorization.ObjectPricing, authorization.ActionPricingView); err != nil {
		AbortWithError(c, err)
		return
	}

	catalog, err := s.catalogSvc.ListCatalog(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	subscriptions := []subscriptiondomain.Subscription{}
	err = s.authzSvc.Authorize(ctx, resolved.Role, authorization.ObjectSubscription, authorization.ActionSubscriptionView)
	switch {
	case err == nil:
		subscriptions, err = s.subscriptions.ListByOrganization(ctx, resolved.Organization.ID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
	case !errors.Is(err, authorization.ErrForbidden):
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organization":  resolved.Organization,
		"role":          resolved.Role,
		"products":      catalog,
		"subscriptions": subscriptions,
	})
}
