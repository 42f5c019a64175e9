// Package middleware provides the HTTP middleware shared by every route:
// structured logging, tracing, metrics, session token extraction and rate limiting.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when Redis cannot be reached.
type FailPolicy int

const (
	FailOpen FailPolicy = iota
	FailClosed
)

var errNoStore = errors.New("rate limit store not configured")

// Limiter counts requests per client in fixed Redis windows. A disabled
// limiter lets everything through.
type Limiter struct {
	rdb     *redis.Client
	enabled bool
}

// NewLimiter enables limiting everywhere except the development, test and
// stress environments.
func NewLimiter(rdb *redis.Client, env string) *Limiter {
	switch env {
	case "", "development", "test", "stress":
		return &Limiter{rdb: rdb}
	}
	return &Limiter{rdb: rdb, enabled: true}
}

// Allow counts one hit on resource for client. When the window is already
// full it reports false with the time left until the window resets.
func (l *Limiter) Allow(ctx context.Context, resource, client string, limit int, window time.Duration) (bool, time.Duration, error) {
	if !l.enabled {
		return true, 0, nil
	}
	if l.rdb == nil {
		return false, 0, errNoStore
	}

	key := "rl:" + resource + ":" + client
	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}

	if incr.Val() > int64(limit) {
		return false, ttl.Val(), nil
	}
	return true, 0, nil
}

// Limit returns a handler allowing limit requests per window for each client
// IP on resource. Store failures let the request through.
func (l *Limiter) Limit(resource string, limit int, window time.Duration) fiber.Handler {
	return l.LimitWithPolicy(resource, limit, window, FailOpen)
}

func (l *Limiter) LimitWithPolicy(resource string, limit int, window time.Duration, policy FailPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		allowed, retryAfter, err := l.Allow(ctx, resource, c.IP(), limit, window)
		if err != nil {
			if policy == FailClosed {
				Logger.WarnContext(ctx, "rate limit fail-closed",
					slog.String("resource", resource),
					slog.String("error", err.Error()))
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "Service temporarily unavailable",
				})
			}
			Logger.WarnContext(ctx, "rate limit store unavailable, failing open",
				slog.String("resource", resource), slog.String("error", err.Error()))
			return c.Next()
		}

		if !allowed {
			if secs := int(retryAfter.Round(time.Second) / time.Second); secs > 0 {
				c.Set(fiber.HeaderRetryAfter, strconv.Itoa(secs))
			}
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		}
		return c.Next()
	}
}
