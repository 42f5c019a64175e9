package server

import (
	"github.com/gofiber/fiber/v2"
)

const (
	sitemapCacheControl      = "public, s-maxage=3600, stale-while-revalidate"
	fixedSitemapCacheControl = "public, s-maxage=86400, stale-while-revalidate"
)

func sendXML(c *fiber.Ctx, cacheControl string, doc []byte) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	c.Set(fiber.HeaderCacheControl, cacheControl)
	return c.Send(doc)
}

// SitemapIndex handles GET /sitemap.xml
func (s *Server) SitemapIndex(c *fiber.Ctx) error {
	doc, err := s.sitemap.Index(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return sendXML(c, sitemapCacheControl, doc)
}

// SitemapPage handles GET /sitemap-blog/:page. A non-numeric page is
// treated as page 0 and rejected by the generator.
func (s *Server) SitemapPage(c *fiber.Ctx) error {
	n, err := c.ParamsInt("page")
	if err != nil {
		n = 0
	}
	doc, err := s.sitemap.Page(c.UserContext(), n)
	if err != nil {
		return respondServiceError(c, err)
	}
	return sendXML(c, sitemapCacheControl, doc)
}

// SitemapFixed handles GET /sitemap-fixed.xml
func (s *Server) SitemapFixed(c *fiber.Ctx) error {
	doc, err := s.sitemap.Fixed(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return sendXML(c, fixedSitemapCacheControl, doc)
}
