package server

import (
	"time"

	"cecilia/internal/content"
	"cecilia/internal/models"
	"cecilia/internal/service"
	"cecilia/internal/storage"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultListLimit = 20
	defaultBlogLimit = 9
)

// postListItem is the /api/posts/list projection.
type postListItem struct {
	ID        uint      `json:"_id"`
	Title     string    `json:"title"`
	URLName   string    `json:"urlName"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// blogListItem is the /api/blog/posts projection.
type blogListItem struct {
	ID        uint      `json:"_id"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle"`
	URLName   string    `json:"urlName"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

type authorView struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// postResponse is a full post with its rendered body. Author shadows the
// embedded field to hide account details.
type postResponse struct {
	*models.Post
	Author   *authorView    `json:"author,omitempty"`
	Rendered []content.Unit `json:"rendered"`
}

func newPostResponse(p *models.Post) postResponse {
	resp := postResponse{Post: p, Rendered: content.Units(content.Render(p.Content))}
	if p.Author != nil {
		resp.Author = &authorView{Name: p.Author.Name, Email: p.Author.Email}
	}
	return resp
}

func listItem(p models.PostSummary) postListItem {
	return postListItem{
		ID:        p.ID,
		Title:     p.Title,
		URLName:   p.URLName,
		ImageURL:  p.ImageURL,
		CreatedAt: p.CreatedAt,
	}
}

// ListPosts handles GET /api/posts/list
// @Summary List published posts
// @Tags posts
// @Produce json
// @Param page query int false "Page, from 1" default(1)
// @Param limit query int false "Page size, at most 100" default(20)
// @Success 200 {object} object{total=int,page=int,limit=int,totalPages=int,posts=[]postListItem}
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/list [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	p := parsePagination(c, defaultListLimit)
	page, err := s.postService.ListPublished(c.UserContext(), p.Page, p.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	items := make([]postListItem, len(page.Posts))
	for i, post := range page.Posts {
		items[i] = listItem(post)
	}

	return c.JSON(fiber.Map{
		"total":      page.Total,
		"page":       page.Page,
		"limit":      page.Limit,
		"totalPages": page.TotalPages,
		"posts":      items,
	})
}

// GetBlogPosts handles GET /api/blog/posts
// @Summary Published posts for the blog grid
// @Tags blog
// @Produce json
// @Param page query int false "Page, from 1" default(1)
// @Param limit query int false "Page size, at most 100" default(9)
// @Success 200 {object} object{posts=[]blogListItem,total=int,hasMore=bool}
// @Failure 400 {object} models.ErrorResponse
// @Router /blog/posts [get]
func (s *Server) GetBlogPosts(c *fiber.Ctx) error {
	p := parsePagination(c, defaultBlogLimit)
	page, err := s.postService.ListPublished(c.UserContext(), p.Page, p.Limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	items := make([]blogListItem, len(page.Posts))
	for i, post := range page.Posts {
		items[i] = blogListItem{
			ID:        post.ID,
			Title:     post.Title,
			Subtitle:  post.Subtitle,
			URLName:   post.URLName,
			ImageURL:  post.ImageURL,
			CreatedAt: post.CreatedAt,
		}
	}

	return c.JSON(fiber.Map{
		"posts":   items,
		"total":   page.Total,
		"hasMore": page.HasMore,
	})
}

// SearchPosts handles GET /api/blog/search?q=...&all=true
// @Summary Search posts by title and subtitle
// @Description all=true includes unpublished posts and requires a session
// @Tags blog
// @Produce json
// @Param q query string false "Search text"
// @Param all query bool false "Include unpublished posts"
// @Success 200 {object} object{posts=[]models.PostSummary,total=int}
// @Failure 401 {object} models.ErrorResponse
// @Router /blog/search [get]
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	includeUnpublished := c.QueryBool("all", false)
	if includeUnpublished && !s.hasSession(c) {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required to search unpublished posts"))
	}

	posts, err := s.postService.Search(c.UserContext(), c.Query("q"), includeUnpublished)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"posts": posts,
		"total": len(posts),
	})
}

// GetPost handles GET /api/posts/:id
// @Summary Get a published post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} postResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPublishedPost(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(newPostResponse(post))
}

// AdminListPosts handles GET /api/posts/admin/list
// @Summary List every post
// @Description Published and unpublished, newest first
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{posts=[]models.PostSummary,total=int}
// @Failure 401 {object} models.ErrorResponse
// @Router /posts/admin/list [get]
func (s *Server) AdminListPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListAll(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"posts": posts,
		"total": len(posts),
	})
}

// SuggestSlug handles GET /api/posts/slug-suggestion?title=...
// @Summary Suggest a free URL name
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param title query string true "Post title"
// @Success 200 {object} object{urlName=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /posts/slug-suggestion [get]
func (s *Server) SuggestSlug(c *fiber.Ctx) error {
	slug, err := s.postService.SuggestSlug(c.UserContext(), c.Query("title"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"urlName": slug})
}

// CreatePost handles POST /api/posts/create
// @Summary Create a post
// @Description Multipart form. content is a JSON array of blocks; keywords is comma separated.
// @Tags posts
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param subtitle formData string false "Subtitle"
// @Param urlName formData string true "URL name"
// @Param content formData string true "Content blocks (JSON)"
// @Param image formData file false "Cover image"
// @Param keywords formData string false "Comma separated keywords"
// @Param metaTitle formData string false "Meta title"
// @Param metaDescription formData string false "Meta description"
// @Param metaImage formData string false "Meta image URL"
// @Param metaImageAlt formData string false "Meta image alt text"
// @Success 201 {object} object{success=bool,message=string,post=postListItem}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /posts/create [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Expected multipart form data"))
	}
	image, err := formImage(form, "image", storage.MaxImageBytes)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read the uploaded image"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		AuthorID:        currentUserID(c),
		Title:           formString(form, "title"),
		Subtitle:        formString(form, "subtitle"),
		URLName:         formString(form, "urlName"),
		Content:         formString(form, "content"),
		Keywords:        formString(form, "keywords"),
		MetaTitle:       formString(form, "metaTitle"),
		MetaDescription: formString(form, "metaDescription"),
		MetaImage:       formString(form, "metaImage"),
		MetaImageAlt:    formString(form, "metaImageAlt"),
		Image:           image,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Post created successfully",
		"post":    listItem(post.Summary()),
	})
}

// UpdatePost handles PUT /api/posts/edit/:id
// @Summary Edit a post
// @Description Multipart form; only submitted fields change. published is "true" or "false".
// @Tags posts
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param title formData string false "Title"
// @Param urlName formData string false "URL name"
// @Param content formData string false "Content blocks (JSON)"
// @Param published formData bool false "Published"
// @Param image formData file false "New cover image"
// @Success 200 {object} object{success=bool,message=string,post=models.Post}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /posts/edit/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Expected multipart form data"))
	}
	published, err := parseBoolField(form, "published")
	if err != nil {
		return respondServiceError(c, err)
	}
	image, err := formImage(form, "image", storage.MaxImageBytes)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read the uploaded image"))
	}

	post, err := s.postService.UpdatePost(c.UserContext(), id, service.UpdatePostInput{
		Title:           formField(form, "title"),
		Subtitle:        formField(form, "subtitle"),
		URLName:         formField(form, "urlName"),
		Content:         formField(form, "content"),
		Keywords:        formField(form, "keywords"),
		MetaTitle:       formField(form, "metaTitle"),
		MetaDescription: formField(form, "metaDescription"),
		MetaImage:       formField(form, "metaImage"),
		MetaImageAlt:    formField(form, "metaImageAlt"),
		Published:       published,
		Image:           image,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Post updated successfully",
		"post":    post,
	})
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Description The cover image is removed afterwards on a best-effort basis
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Post deleted successfully",
	})
}
