package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cecilia/internal/middleware"
)

const (
	PostKeyPrefix     = "post:%d"
	SitemapGenKey     = "sitemap:gen"
	SitemapKeyPrefix  = "sitemap:v%d:%s"
	SessionRevokedKey = "blacklist:%s"
)

const (
	PostTTL    = 30 * time.Minute
	SitemapTTL = time.Hour
)

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func RevokedSessionKey(jti string) string {
	return fmt.Sprintf(SessionRevokedKey, jti)
}

// SitemapKey scopes a sitemap document to the current generation, so a
// single INCR retires every cached page at once.
func SitemapKey(ctx context.Context, name string) string {
	var gen int64
	if client != nil {
		if v, err := client.Get(ctx, SitemapGenKey).Int64(); err == nil {
			gen = v
		}
	}
	return fmt.Sprintf(SitemapKeyPrefix, gen, name)
}

func Invalidate(ctx context.Context, key string) {
	if client == nil {
		return
	}
	if err := client.Del(ctx, key).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed",
			slog.String("key", key), slog.String("error", err.Error()))
	}
}

// InvalidatePost drops a cached post and every sitemap that may list it.
func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
	InvalidateSitemaps(ctx)
}

func InvalidateSitemaps(ctx context.Context) {
	if client == nil {
		return
	}
	if err := client.Incr(ctx, SitemapGenKey).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "sitemap cache invalidation failed", slog.String("error", err.Error()))
	}
}
