package requestctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDsRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetRunID(ctx))

	ctx = WithRunID(WithRequestID(ctx, "req-1"), "run-1")
	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "run-1", GetRunID(ctx))
}
