package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("event_type", "price.updated"),
		attribute.String("customer_id", "cus_123"),
		attribute.String("outcome", "processed"),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("event_type"), attrs[0].Key)
	assert.Equal(t, attribute.Key("outcome"), attrs[1].Key)
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordWebhookEvent(context.Background(), "stripe", "price.updated", "processed")
		m.RecordCheckoutSession(context.Background(), "created")
		m.RecordRateLimitDenied(context.Background(), "login", "exhausted")
	})
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{ServiceName: "launchpad"}, noop.NewMeterProvider())
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		m.RecordWebhookEvent(context.Background(), "stripe", "product.created", "processed")
		m.RecordCustomerCreated(context.Background(), "stripe")
		m.RecordRateLimitAllowed(context.Background(), "signup")
	})
}
