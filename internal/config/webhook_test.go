package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookConfigIgnores(t *testing.T) {
	holder := NewStaticWebhookConfigHolder(WebhookConfig{
		IgnoredEventTypes: []string{"invoice.paid", " charge.succeeded "},
	})

	cfg := holder.Get()
	assert.True(t, cfg.Ignores("invoice.paid"))
	assert.True(t, cfg.Ignores("charge.succeeded"))
	assert.False(t, cfg.Ignores("customer.created"))
}

func TestValidateWebhookConfigRejectsEmptyEntries(t *testing.T) {
	err := validateWebhookConfig(WebhookConfig{IgnoredEventTypes: []string{"invoice.paid", " "}})
	require.Error(t, err)

	require.NoError(t, validateWebhookConfig(DefaultWebhookConfig()))
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SITE_URL", "https://app.example.com/")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_test")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("REDIS_ADDR", "")

	cfg := Load()
	assert.Equal(t, "https://app.example.com", cfg.SiteURL)
	assert.Equal(t, "whsec_test", cfg.Stripe.WebhookSecret)
	assert.True(t, cfg.AuthCookieSecure)
	assert.False(t, cfg.IsDevelopment())
	assert.False(t, cfg.Redis.Enabled())
}
