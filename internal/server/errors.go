package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/launchpad/internal/auth/domain"
	"github.com/smallbiznis/launchpad/internal/authorization"
	billingdomain "github.com/smallbiznis/launchpad/internal/billing/domain"
	checkoutdomain "github.com/smallbiznis/launchpad/internal/checkout/domain"
	organizationdomain "github.com/smallbiznis/launchpad/internal/organization/domain"
	paymentdomain "github.com/smallbiznis/launchpad/internal/payment/domain"
	"github.com/smallbiznis/launchpad/pkg/fielderr"
	"gorm.io/gorm"
)

const genericFormMessage = "Something went wrong"

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// formErrorResponse is the body of a rejected form action.
type formErrorResponse struct {
	Errors fielderr.Errors `json:"errors"`
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not_found")
	ErrRateLimited  = errors.New("rate_limited")
	ErrInternal     = errors.New("internal_error")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, body := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, body)
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, any) {
	if err == nil {
		return http.StatusInternalServerError, internalError()
	}

	if fields, ok := fielderr.As(err); ok {
		return http.StatusBadRequest, formErrorResponse{Errors: fields}
	}
	if fields, ok := organizationFieldErrors(err); ok {
		return http.StatusBadRequest, formErrorResponse{Errors: fields}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, checkoutdomain.ErrUnauthenticated),
		errors.Is(err, authdomain.ErrInvalidToken),
		errors.Is(err, authdomain.ErrTokenExpired):
		return http.StatusUnauthorized, errorResponse{Error: errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}}
	case isNotFoundError(err):
		return http.StatusNotFound, errorResponse{Error: errorPayload{
			Type:    "not_found",
			Message: "not found",
		}}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, formErrorResponse{
			Errors: fielderr.Form("Too many attempts, please try again later"),
		}
	case isUpstreamError(err):
		return http.StatusBadGateway, formErrorResponse{Errors: fielderr.Form(genericFormMessage)}
	default:
		return http.StatusInternalServerError, internalError()
	}
}

func internalError() errorResponse {
	return errorResponse{Error: errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
	}}
}

// isNotFoundError also covers membership and role denials so that callers
// cannot discover which organizations exist.
func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, organizationdomain.ErrNotFound),
		errors.Is(err, organizationdomain.ErrUnauthorized),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, authdomain.ErrNoOrganization),
		errors.Is(err, authdomain.ErrInvalidProvider),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isUpstreamError(err error) bool {
	switch {
	case errors.Is(err, authdomain.ErrUpstream),
		errors.Is(err, authdomain.ErrNotConfigured),
		errors.Is(err, paymentdomain.ErrUpstream),
		errors.Is(err, paymentdomain.ErrNotConfigured),
		errors.Is(err, paymentdomain.ErrMissingCheckoutURL):
		return true
	default:
		return false
	}
}

func organizationFieldErrors(err error) (fielderr.Errors, bool) {
	switch {
	case errors.Is(err, organizationdomain.ErrInvalidName):
		return fielderr.New("name", "Name is required"), true
	case errors.Is(err, organizationdomain.ErrInvalidSlug):
		return fielderr.New("slug", "Slug may only contain lowercase letters, numbers and dashes"), true
	case errors.Is(err, organizationdomain.ErrSlugTaken):
		return fielderr.New("slug", "Slug is already taken"), true
	default:
		return nil, false
	}
}

func isWebhookRequestError(err error) bool {
	switch {
	case errors.Is(err, paymentdomain.ErrMissingSignature),
		errors.Is(err, paymentdomain.ErrMissingWebhookSecret),
		errors.Is(err, paymentdomain.ErrInvalidSignature):
		return true
	default:
		return false
	}
}

// classifyErrorForLog returns the error type and code attached to request logs.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	if _, ok := fielderr.As(err); ok {
		return "validation_error", "invalid_request"
	}
	switch {
	case isWebhookRequestError(err):
		return "webhook_rejected", err.Error()
	case errors.Is(err, paymentdomain.ErrUnhandledEventType):
		return "webhook_unhandled", err.Error()
	case errors.Is(err, billingdomain.ErrProfileMissing):
		return "integrity_error", err.Error()
	case errors.Is(err, ErrRateLimited):
		return "rate_limited", err.Error()
	case isUpstreamError(err):
		return "upstream_error", err.Error()
	}

	status, _ := mapError(err)
	switch status {
	case http.StatusUnauthorized:
		return "unauthorized", "unauthorized"
	case http.StatusNotFound:
		return "not_found", "not_found"
	case http.StatusBadRequest:
		return "validation_error", err.Error()
	default:
		return "internal_error", "internal_error"
	}
}
