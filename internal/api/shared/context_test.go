package shared

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceID(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))

	ctx := SetTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), id)

	other := GetTraceID(SetTraceID(context.Background()))
	assert.NotEqual(t, id, other)

	assert.Equal(t, "abc", GetTraceID(WithTraceID(context.Background(), "abc")))
}

func TestGenerateFallbackTraceID(t *testing.T) {
	assert.Len(t, generateFallbackTraceID(), 2*TraceIDLength)
}
