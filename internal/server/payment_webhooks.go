package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/launchpad/internal/observability/context"
	paymentdomain "github.com/smallbiznis/launchpad/internal/payment/domain"
)

const (
	stripeSignatureHeader = "Stripe-Signature"
	maxWebhookPayload     = 1 << 20
)

// HandleStripeWebhook acknowledges a delivery only after it was applied, so
// the gateway retries anything that failed.
func (s *Server) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookPayload))
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Webhook Error"})
		return
	}

	ctx := obscontext.WithActor(c.Request.Context(), "webhook", "stripe")
	result, err := s.webhookSvc.Ingest(ctx, payload, c.GetHeader(stripeSignatureHeader))
	if err != nil {
		_ = c.Error(err)
		if isWebhookRequestError(err) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": webhookErrorMessage(err)})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Webhook handler error"})
		return
	}

	c.Set("webhook_event_type", result.EventType)
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func webhookErrorMessage(err error) string {
	switch {
	case errors.Is(err, paymentdomain.ErrMissingSignature):
		return "Webhook Error: missing signature"
	case errors.Is(err, paymentdomain.ErrMissingWebhookSecret):
		return "Webhook Error: webhook secret not configured"
	default:
		return "Webhook Error: signature verification failed"
	}
}
