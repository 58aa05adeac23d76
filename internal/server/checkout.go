package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	checkoutdomain "github.com/smallbiznis/launchpad/internal/checkout/domain"
	"github.com/smallbiznis/launchpad/pkg/fielderr"
)

// CreateCheckout sends the browser to the hosted checkout page.
func (s *Server) CreateCheckout(c *gin.Context) {
	var req checkoutdomain.CreateCheckoutRequest
	if err := c.ShouldBind(&req); err != nil {
		AbortWithError(c, fielderr.Form("Invalid request"))
		return
	}

	url, err := s.checkoutSvc.CreateCheckoutSession(c.Request.Context(), req, userIDFromContext(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, url)
}
