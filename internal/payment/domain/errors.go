package domain

import "errors"

var (
	ErrMissingSignature     = errors.New("missing_signature")
	ErrMissingWebhookSecret = errors.New("missing_webhook_secret")
	ErrInvalidSignature     = errors.New("invalid_signature")
	ErrInvalidPayload       = errors.New("invalid_payload")
	ErrNotConfigured        = errors.New("gateway_not_configured")
	ErrUpstream             = errors.New("gateway_upstream_error")
	ErrMissingCheckoutURL   = errors.New("missing_checkout_url")
)
