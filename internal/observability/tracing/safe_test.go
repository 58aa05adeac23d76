package tracing

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsSensitiveKeys(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/stripe/webhook"),
		attribute.String("email", "a@example.com"),
		attribute.String("stripe_signature", "t=1,v1=abc"),
	)
	assert.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("http.route"), attrs[0].Key)
}

func TestSafeErrorTruncates(t *testing.T) {
	assert.Nil(t, SafeError(nil))

	long := errors.New(strings.Repeat("x", 300))
	assert.Len(t, SafeError(long).Error(), 256)
}

func TestSamplingRatioClamps(t *testing.T) {
	assert.Equal(t, 0.0, samplingRatio(-1))
	assert.Equal(t, 1.0, samplingRatio(3))
	assert.Equal(t, 0.25, samplingRatio(0.25))
}
