package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, limit int) (*FixedWindowLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l, err := NewFixedWindowLimiter(client, "test", limit, time.Minute)
	require.NoError(t, err)
	fixed := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }
	return l, mr
}

func TestNewFixedWindowLimiter_Validation(t *testing.T) {
	_, err := NewFixedWindowLimiter(nil, "", 1, time.Second)
	require.Error(t, err)

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()
	_, err = NewFixedWindowLimiter(client, "", 0, time.Second)
	require.Error(t, err)
}

func TestAllow_CountsPerKeyWithinWindow(t *testing.T) {
	l, _ := newLimiter(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok)

	l.now = func() time.Time { return time.Date(2026, 10, 16, 12, 1, 0, 0, time.UTC) }
	ok, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok, "a new window resets the quota")
}

func TestMiddleware_RejectsOverQuotaAndFailsOpen(t *testing.T) {
	l, mr := newLimiter(t, 1)

	e := echo.New()
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, l.Middleware())

	do := func() int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusTooManyRequests, do())

	mr.Close()
	assert.Equal(t, http.StatusOK, do(), "redis outage must not block requests")
}
