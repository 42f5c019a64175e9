package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestNewLimiterEnvironments(t *testing.T) {
	for env, enabled := range map[string]bool{
		"":            false,
		"development": false,
		"test":        false,
		"stress":      false,
		"staging":     true,
		"production":  true,
	} {
		assert.Equal(t, enabled, NewLimiter(nil, env).enabled, env)
	}
}

func TestAllowDisabledSkipsStore(t *testing.T) {
	allowed, _, err := NewLimiter(nil, "test").Allow(context.Background(), "login", "1.2.3.4", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestAllowWithoutStore(t *testing.T) {
	allowed, _, err := NewLimiter(nil, "production").Allow(context.Background(), "login", "1.2.3.4", 1, time.Minute)
	assert.ErrorIs(t, err, errNoStore)
	assert.False(t, allowed)
}

func TestAllowCountsWithinWindow(t *testing.T) {
	mr, rdb := newRedis(t)
	l := NewLimiter(rdb, "production")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, err := l.Allow(ctx, "login", "1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i+1)
	}

	allowed, retryAfter, err := l.Allow(ctx, "login", "1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, time.Minute, retryAfter)
	assert.Equal(t, time.Minute, mr.TTL("rl:login:1.2.3.4"))

	// Another client has its own window.
	allowed, _, err = l.Allow(ctx, "login", "5.6.7.8", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	mr.FastForward(time.Minute + time.Second)
	allowed, _, err = l.Allow(ctx, "login", "1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestLimitMiddleware(t *testing.T) {
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

	t.Run("fails open without redis", func(t *testing.T) {
		app := fiber.New()
		app.Get("/search", NewLimiter(nil, "production").Limit("search", 1, time.Minute), ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/search", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("fails closed without redis", func(t *testing.T) {
		app := fiber.New()
		app.Post("/login", NewLimiter(nil, "production").LimitWithPolicy("login", 1, time.Minute, FailClosed), ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("limit exceeded sets Retry-After", func(t *testing.T) {
		_, rdb := newRedis(t)
		app := fiber.New()
		app.Post("/login", NewLimiter(rdb, "production").Limit("login", 1, 5*time.Minute), ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()

		resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, "300", resp.Header.Get(fiber.HeaderRetryAfter))
		_ = resp.Body.Close()
	})
}
