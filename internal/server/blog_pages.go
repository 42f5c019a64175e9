package server

import (
	"bytes"
	"io"

	"cecilia/internal/models"
	"cecilia/internal/web"

	"github.com/gofiber/fiber/v2"
)

// sendPage renders into a buffer first so a template failure never leaves
// a half-written page behind.
func (s *Server) sendPage(c *fiber.Ctx, status int, render func(w io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}

func (s *Server) notFoundPage(c *fiber.Ctx) error {
	return s.sendPage(c, fiber.StatusNotFound, s.pages.NotFound)
}

// pageError shows the 404 page for missing posts and bad input; anything
// else is a server error.
func (s *Server) pageError(c *fiber.Ctx, err error) error {
	switch models.StatusFor(err) {
	case fiber.StatusNotFound, fiber.StatusBadRequest:
		return s.notFoundPage(c)
	default:
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
}

// BlogIndex handles GET /blog?page=
func (s *Server) BlogIndex(c *fiber.Ctx) error {
	page, err := s.postService.ListPublished(c.UserContext(), c.QueryInt("page", 1), defaultBlogLimit)
	if err != nil {
		return s.pageError(c, err)
	}
	if page.Page > 1 && page.Page > page.TotalPages {
		return s.notFoundPage(c)
	}

	return s.sendPage(c, fiber.StatusOK, func(w io.Writer) error {
		return s.pages.List(w, web.ListPage{
			Posts:      page.Posts,
			Total:      page.Total,
			Page:       page.Page,
			TotalPages: page.TotalPages,
		})
	})
}

// BlogPost handles GET /blog/:id/:slug. A stale slug redirects to the
// current one.
func (s *Server) BlogPost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return s.notFoundPage(c)
	}

	post, canonical, err := s.postService.ResolveCanonical(c.UserContext(), uint(id), c.Params("slug"))
	if err != nil {
		return s.pageError(c, err)
	}
	if !canonical {
		return c.Redirect(web.PostPath(post.ID, post.URLName), fiber.StatusMovedPermanently)
	}

	return s.sendPage(c, fiber.StatusOK, func(w io.Writer) error {
		return s.pages.Post(w, post)
	})
}

// BlogPostRedirect handles GET /blog/:id
func (s *Server) BlogPostRedirect(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return s.notFoundPage(c)
	}

	post, err := s.postService.GetPublishedPost(c.UserContext(), uint(id))
	if err != nil {
		return s.pageError(c, err)
	}
	return c.Redirect(web.PostPath(post.ID, post.URLName), fiber.StatusMovedPermanently)
}
