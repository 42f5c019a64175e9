// Package cache keeps post and sitemap documents in Redis. Every helper is a
// no-op when no client is installed.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cecilia/internal/middleware"
	"cecilia/internal/observability"

	"github.com/redis/go-redis/v9"
)

const dialTimeout = 5 * time.Second

var client *redis.Client

// instrumentHook counts failed commands and GET hits and misses.
type instrumentHook struct{}

func (instrumentHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (instrumentHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		observe(cmd.Name(), err)
		return err
	}
}

func (instrumentHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		for _, cmd := range cmds {
			observe(cmd.Name(), cmd.Err())
		}
		return err
	}
}

func observe(command string, err error) {
	switch {
	case errors.Is(err, redis.Nil):
		if command == "get" {
			observability.CacheLookups.WithLabelValues("miss").Inc()
		}
	case err != nil:
		observability.RedisErrors.WithLabelValues(command).Inc()
	case command == "get":
		observability.CacheLookups.WithLabelValues("hit").Inc()
	}
}

// ParseAddr accepts a redis:// or rediss:// URL or a bare host:port.
func ParseAddr(addr string) (*redis.Options, error) {
	if !strings.Contains(addr, "://") {
		return &redis.Options{Addr: addr}, nil
	}
	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return opts, nil
}

// Dial returns an instrumented client that answered a PING.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	opts, err := ParseAddr(addr)
	if err != nil {
		return nil, err
	}
	c := redis.NewClient(opts)
	c.AddHook(instrumentHook{})

	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, nil
}

// InitRedis installs the process-wide client. When Redis cannot be reached
// the client stays nil and the site runs uncached.
func InitRedis(addr string) {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	c, err := Dial(ctx, addr)
	if err != nil {
		middleware.Logger.Warn("redis unavailable, continuing without cache",
			slog.String("error", err.Error()))
		client = nil
		return
	}
	middleware.Logger.Info("Redis connected successfully")
	client = c
}

// SetClient installs an already constructed client (tests, CLIs).
func SetClient(c *redis.Client) {
	if c != nil {
		c.AddHook(instrumentHook{})
	}
	client = c
}

// GetClient returns the current client, nil when caching is off.
func GetClient() *redis.Client {
	return client
}
