// Package sitemap renders the blog sitemaps: an index, one page per
// PageCapacity published posts, and a fixed map of marketing pages.
package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"time"

	"cecilia/internal/cache"
	"cecilia/internal/models"
)

// PageCapacity is the sitemap protocol's per-file URL limit.
const PageCapacity = 50000

const (
	namespace      = "http://www.sitemaps.org/schemas/sitemap/0.9"
	postChangeFreq = "weekly"
	postPriority   = "0.8"
	dateLayout     = "2006-01-02"
)

// Source lists published posts in listing order.
type Source interface {
	CountPublished(ctx context.Context) (int64, error)
	SitemapEntries(ctx context.Context, limit, offset int) ([]models.SitemapEntry, error)
}

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	Xmlns   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Xmlns    string       `xml:"xmlns,attr"`
	Sitemaps []indexEntry `xml:"sitemap"`
}

type indexEntry struct {
	Loc string `xml:"loc"`
}

// Generator builds sitemap documents against baseURL. Documents are cached
// until the next post write.
type Generator struct {
	source   Source
	baseURL  string
	fixed    []FixedPage
	capacity int
}

// NewGenerator returns a generator. fixed may be empty, in which case the
// index omits the fixed map.
func NewGenerator(source Source, baseURL string, fixed []FixedPage) *Generator {
	return &Generator{source: source, baseURL: baseURL, fixed: fixed, capacity: PageCapacity}
}

// PageCount is ceil(published posts / capacity).
func (g *Generator) PageCount(ctx context.Context) (int, error) {
	total, err := g.source.CountPublished(ctx)
	if err != nil {
		return 0, err
	}
	return pageCount(total, g.capacity), nil
}

// HasFixed reports whether a fixed page list was loaded.
func (g *Generator) HasFixed() bool {
	return len(g.fixed) > 0
}

// Index lists the fixed map, if any, then every blog page.
func (g *Generator) Index(ctx context.Context) ([]byte, error) {
	return g.cached(ctx, "index", func() ([]byte, error) {
		pages, err := g.PageCount(ctx)
		if err != nil {
			return nil, err
		}
		idx := sitemapIndex{Xmlns: namespace, Sitemaps: make([]indexEntry, 0, pages+1)}
		if g.HasFixed() {
			idx.Sitemaps = append(idx.Sitemaps, indexEntry{Loc: g.baseURL + "/sitemap-fixed.xml"})
		}
		for i := 1; i <= pages; i++ {
			idx.Sitemaps = append(idx.Sitemaps, indexEntry{Loc: fmt.Sprintf("%s/sitemap-blog/%d", g.baseURL, i)})
		}
		return encode(idx)
	})
}

// Page renders the n-th (1-indexed) slice of published posts, newest first.
func (g *Generator) Page(ctx context.Context, n int) ([]byte, error) {
	if n < 1 {
		return nil, models.NewValidationError("Invalid page number",
			models.FieldError{Field: "page", Message: "page must be 1 or greater"})
	}
	return g.cached(ctx, "blog:"+strconv.Itoa(n), func() ([]byte, error) {
		pages, err := g.PageCount(ctx)
		if err != nil {
			return nil, err
		}
		if n > pages {
			return nil, models.NewNotFoundError("Sitemap page", n)
		}

		entries, err := g.source.SitemapEntries(ctx, g.capacity, (n-1)*g.capacity)
		if err != nil {
			return nil, err
		}
		set := urlSet{Xmlns: namespace, URLs: make([]urlEntry, len(entries))}
		for i, e := range entries {
			set.URLs[i] = urlEntry{
				Loc:        fmt.Sprintf("%s/blog/%d/%s", g.baseURL, e.ID, e.URLName),
				LastMod:    lastModified(e).UTC().Format(dateLayout),
				ChangeFreq: postChangeFreq,
				Priority:   postPriority,
			}
		}
		return encode(set)
	})
}

// Fixed renders the marketing pages. It is a not-found error when no
// fixed list was loaded.
func (g *Generator) Fixed(ctx context.Context) ([]byte, error) {
	if !g.HasFixed() {
		return nil, models.NewNotFoundError("Sitemap", "fixed")
	}
	return g.cached(ctx, "fixed", func() ([]byte, error) {
		set := urlSet{Xmlns: namespace, URLs: make([]urlEntry, len(g.fixed))}
		for i, p := range g.fixed {
			set.URLs[i] = p.entry(g.baseURL)
		}
		return encode(set)
	})
}

func (g *Generator) cached(ctx context.Context, name string, build func() ([]byte, error)) ([]byte, error) {
	var doc string
	err := cache.Aside(ctx, cache.SitemapKey(ctx, name), &doc, cache.SitemapTTL, func() error {
		b, err := build()
		if err != nil {
			return err
		}
		doc = string(b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return []byte(doc), nil
}

func pageCount(total int64, capacity int) int {
	return int(math.Ceil(float64(total) / float64(capacity)))
}

func lastModified(e models.SitemapEntry) time.Time {
	if !e.UpdatedAt.IsZero() {
		return e.UpdatedAt
	}
	return e.CreatedAt
}

func encode(v any) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
