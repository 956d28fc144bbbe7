package logger

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("parses level", func(t *testing.T) {
		l := New(EnvProduction, "debug")
		require.NotNil(t, l)
		assert.Equal(t, zerolog.DebugLevel, l.GetLevel())
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		l := New(EnvProduction, "loud")
		assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
	})
}

func TestContextHelpers(t *testing.T) {
	t.Run("roundtrip through context", func(t *testing.T) {
		l := Nop()
		ctx := l.WithContext(context.Background())

		got := FromContext(ctx)
		assert.Same(t, l, got)
	})

	t.Run("missing logger is a nop", func(t *testing.T) {
		got := FromContext(context.Background())
		require.NotNil(t, got)
		assert.Equal(t, zerolog.Disabled, got.GetLevel())
	})

	t.Run("from request", func(t *testing.T) {
		l := Nop()
		r := httptest.NewRequest("GET", "/", nil)
		r = r.WithContext(l.WithContext(r.Context()))

		assert.Same(t, l, FromRequest(r))
	})
}
