package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithTraceIDContext(t *testing.T) {
	t.Run("keeps provided trace ID", func(t *testing.T) {
		ctx := WithTraceID(context.Background(), "test-trace-123")
		assert.Equal(t, "test-trace-123", GetTraceID(ctx))
	})

	t.Run("generates a UUID when empty", func(t *testing.T) {
		ctx := WithTraceID(context.Background(), "")
		assert.Len(t, GetTraceID(ctx), 36)
	})

	t.Run("preserves other context values", func(t *testing.T) {
		type testKey string
		ctx := context.WithValue(context.Background(), testKey("k"), "v")
		ctx = WithTraceID(ctx, "trace-456")

		assert.Equal(t, "trace-456", GetTraceID(ctx))
		assert.Equal(t, "v", ctx.Value(testKey("k")))
	})
}

func TestGetTraceIDMissing(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestNewTraceIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewTraceID()
		_, dup := seen[id]
		assert.False(t, dup)
		seen[id] = struct{}{}
	}
}
