package sitemap

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cecilia/internal/cache"
	"cecilia/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticSource serves n published posts, id n newest, without a database.
type syntheticSource struct {
	n       int
	queries int
	err     error
}

func (s *syntheticSource) CountPublished(context.Context) (int64, error) {
	return int64(s.n), s.err
}

func (s *syntheticSource) SitemapEntries(_ context.Context, limit, offset int) ([]models.SitemapEntry, error) {
	s.queries++
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var out []models.SitemapEntry
	for i := offset; i < offset+limit && i < s.n; i++ {
		id := s.n - i
		out = append(out, models.SitemapEntry{
			ID:        uint(id),
			URLName:   fmt.Sprintf("post-%d", id),
			CreatedAt: base.Add(time.Duration(id) * time.Minute),
		})
	}
	return out, nil
}

func decodeURLs(t *testing.T, doc []byte) []urlEntry {
	t.Helper()
	var set urlSet
	require.NoError(t, xml.Unmarshal(doc, &set))
	return set.URLs
}

func TestPageCount(t *testing.T) {
	for total, want := range map[int64]int{0: 0, 1: 1, 50000: 1, 50001: 2, 120000: 3} {
		assert.Equal(t, want, pageCount(total, PageCapacity), total)
	}
}

func TestPagesPartitionAllPosts(t *testing.T) {
	src := &syntheticSource{n: 120000}
	g := NewGenerator(src, "https://cecilia.digital", nil)
	ctx := context.Background()

	pages, err := g.PageCount(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, pages)

	seen := make(map[string]bool, src.n)
	var order []string
	sizes := []int{}
	for n := 1; n <= pages; n++ {
		doc, err := g.Page(ctx, n)
		require.NoError(t, err)
		urls := decodeURLs(t, doc)
		sizes = append(sizes, len(urls))
		for _, u := range urls {
			require.False(t, seen[u.Loc], "duplicate %s", u.Loc)
			seen[u.Loc] = true
			order = append(order, u.Loc)
		}
	}

	assert.Equal(t, []int{50000, 50000, 20000}, sizes)
	assert.Len(t, seen, 120000)
	assert.Equal(t, "https://cecilia.digital/blog/120000/post-120000", order[0])
	assert.Equal(t, "https://cecilia.digital/blog/1/post-1", order[len(order)-1])
}

func TestPageEntryShape(t *testing.T) {
	src := &syntheticSource{n: 2}
	doc, err := NewGenerator(src, "https://cecilia.digital", nil).Page(context.Background(), 1)
	require.NoError(t, err)

	assert.Contains(t, string(doc), `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, string(doc), `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)

	urls := decodeURLs(t, doc)
	require.Len(t, urls, 2)
	assert.Equal(t, urlEntry{
		Loc:        "https://cecilia.digital/blog/2/post-2",
		LastMod:    "2024-01-01",
		ChangeFreq: "weekly",
		Priority:   "0.8",
	}, urls[0])
}

func TestLastModifiedPrefersUpdatedAt(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, updated, lastModified(models.SitemapEntry{CreatedAt: created, UpdatedAt: updated}))
	assert.Equal(t, created, lastModified(models.SitemapEntry{CreatedAt: created}))
}

func TestPageRejectsBadNumbers(t *testing.T) {
	g := NewGenerator(&syntheticSource{n: 10}, "https://cecilia.digital", nil)
	ctx := context.Background()

	for _, n := range []int{0, -1} {
		_, err := g.Page(ctx, n)
		assert.Equal(t, 400, models.StatusFor(err), n)
	}
	_, err := g.Page(ctx, 2)
	assert.Equal(t, 404, models.StatusFor(err))
}

func TestIndex(t *testing.T) {
	fixed := []FixedPage{{Path: "/"}}
	g := NewGenerator(&syntheticSource{n: 50001}, "https://cecilia.digital", fixed)

	doc, err := g.Index(context.Background())
	require.NoError(t, err)

	var idx sitemapIndex
	require.NoError(t, xml.Unmarshal(doc, &idx))
	locs := make([]string, len(idx.Sitemaps))
	for i, s := range idx.Sitemaps {
		locs[i] = s.Loc
	}
	assert.Equal(t, []string{
		"https://cecilia.digital/sitemap-fixed.xml",
		"https://cecilia.digital/sitemap-blog/1",
		"https://cecilia.digital/sitemap-blog/2",
	}, locs)

	doc, err = NewGenerator(&syntheticSource{}, "http://localhost:8080", nil).Index(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, string(doc), "sitemap-fixed.xml")
	assert.NotContains(t, string(doc), "sitemap-blog")
}

func TestIndexPropagatesSourceErrors(t *testing.T) {
	g := NewGenerator(&syntheticSource{err: errors.New("db down")}, "https://cecilia.digital", nil)
	_, err := g.Index(context.Background())
	assert.Error(t, err)
}

func TestFixed(t *testing.T) {
	g := NewGenerator(&syntheticSource{}, "https://cecilia.digital", []FixedPage{
		{Path: "/", ChangeFreq: "monthly", Priority: 1},
		{Path: "/pay"},
	})
	doc, err := g.Fixed(context.Background())
	require.NoError(t, err)

	urls := decodeURLs(t, doc)
	require.Len(t, urls, 2)
	assert.Equal(t, urlEntry{Loc: "https://cecilia.digital/", ChangeFreq: "monthly", Priority: "1.0"}, urls[0])
	assert.Equal(t, urlEntry{Loc: "https://cecilia.digital/pay"}, urls[1])

	_, err = NewGenerator(&syntheticSource{}, "https://cecilia.digital", nil).Fixed(context.Background())
	assert.Equal(t, 404, models.StatusFor(err))
}

func TestPagesAreCachedUntilInvalidated(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	src := &syntheticSource{n: 3}
	g := NewGenerator(src, "https://cecilia.digital", nil)
	ctx := context.Background()

	first, err := g.Page(ctx, 1)
	require.NoError(t, err)
	second, err := g.Page(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.queries)

	cache.InvalidateSitemaps(ctx)
	src.n = 4
	third, err := g.Page(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, src.queries)
	assert.Len(t, decodeURLs(t, third), 4)
}

func TestLoadFixedPages(t *testing.T) {
	dir := t.TempDir()

	pages, err := LoadFixedPages(filepath.Join(dir, "missing.yml"))
	require.NoError(t, err)
	assert.Empty(t, pages)

	path := filepath.Join(dir, "fixed.yml")
	require.NoError(t, os.WriteFile(path, []byte("pages:\n  - path: /\n    priority: 1.0\n  - path: /blog\n    changefreq: daily\n"), 0o600))
	pages, err = LoadFixedPages(path)
	require.NoError(t, err)
	assert.Equal(t, []FixedPage{{Path: "/", Priority: 1}, {Path: "/blog", ChangeFreq: "daily"}}, pages)

	_, err = ParseFixedPages([]byte("pages:\n  - path: blog\n"))
	assert.Error(t, err)
	_, err = ParseFixedPages([]byte("pages:\n  - path: /\n    priority: 2\n"))
	assert.Error(t, err)
	_, err = ParseFixedPages([]byte("pages: [unclosed"))
	assert.Error(t, err)
}
