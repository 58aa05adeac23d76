package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithOrgID(ctx, "42")
	ctx = WithActor(ctx, "user", "u-1")

	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "42", OrgIDFromContext(ctx))
	kind, id := ActorFromContext(ctx)
	assert.Equal(t, "user", kind)
	assert.Equal(t, "u-1", id)
}

func TestContextEmpty(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))
	kind, id := ActorFromContext(ctx)
	assert.Empty(t, kind)
	assert.Empty(t, id)
}
