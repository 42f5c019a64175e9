package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"cecilia/internal/observability"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

type cachedPost struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func TestAside(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedPost) func() error {
		return func() error {
			calls++
			*dest = cachedPost{ID: 7, Title: "from db"}
			return nil
		}
	}

	var first cachedPost
	require.NoError(t, Aside(ctx, PostKey(7), &first, PostTTL, fetch(&first)))
	assert.Equal(t, "from db", first.Title)
	assert.True(t, mr.Exists("post:7"))

	var second cachedPost
	require.NoError(t, Aside(ctx, PostKey(7), &second, PostTTL, fetch(&second)))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	mr.FastForward(PostTTL + time.Second)
	var third cachedPost
	require.NoError(t, Aside(ctx, PostKey(7), &third, PostTTL, fetch(&third)))
	assert.Equal(t, 2, calls)
}

func TestAsideFetchErrorIsNotCached(t *testing.T) {
	mr := setupMiniredis(t)
	boom := errors.New("db down")

	var dest cachedPost
	err := Aside(context.Background(), PostKey(1), &dest, PostTTL, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("post:1"))
}

func TestAsideWithoutRedis(t *testing.T) {
	SetClient(nil)

	var dest cachedPost
	err := Aside(context.Background(), PostKey(1), &dest, PostTTL, func() error {
		dest.Title = "direct"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "direct", dest.Title)
}

func TestSitemapKeysRotateOnInvalidation(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	before := SitemapKey(ctx, "index")
	assert.Equal(t, "sitemap:v0:index", before)

	InvalidatePost(ctx, 3)
	assert.Equal(t, "sitemap:v1:index", SitemapKey(ctx, "index"))
}

func TestInvalidatePostRemovesEntry(t *testing.T) {
	mr := setupMiniredis(t)
	require.NoError(t, mr.Set("post:3", `{"id":3}`))

	InvalidatePost(context.Background(), 3)
	assert.False(t, mr.Exists("post:3"))
}

func TestParseAddr(t *testing.T) {
	opts, err := ParseAddr("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)

	opts, err = ParseAddr("redis://:s3cret@cache.internal:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "s3cret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	_, err = ParseAddr("redis://cache.internal:6380/not-a-db")
	assert.Error(t, err)
}

func TestInitRedisFallsBackWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	InitRedis(addr)
	t.Cleanup(func() { SetClient(nil) })
	assert.Nil(t, GetClient())
}

func TestInitRedisConnects(t *testing.T) {
	mr := miniredis.RunT(t)

	InitRedis("redis://" + mr.Addr())
	t.Cleanup(func() {
		_ = GetClient().Close()
		SetClient(nil)
	})
	require.NotNil(t, GetClient())
}

func TestLookupsCountHitsAndMisses(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()
	hits := testutil.ToFloat64(observability.CacheLookups.WithLabelValues("hit"))
	misses := testutil.ToFloat64(observability.CacheLookups.WithLabelValues("miss"))

	var dest cachedPost
	found, err := GetJSON(ctx, PostKey(9), &dest)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, PostKey(9), cachedPost{ID: 9}, PostTTL))
	found, err = GetJSON(ctx, PostKey(9), &dest)
	require.NoError(t, err)
	assert.True(t, found)

	assert.InDelta(t, 1, testutil.ToFloat64(observability.CacheLookups.WithLabelValues("hit"))-hits, 0.0001)
	assert.InDelta(t, 1, testutil.ToFloat64(observability.CacheLookups.WithLabelValues("miss"))-misses, 0.0001)
}
