// Package service holds the application's use cases, between the HTTP
// handlers and the repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"cecilia/internal/content"
	"cecilia/internal/models"
	"cecilia/internal/observability"
	"cecilia/internal/repository"
	"cecilia/internal/storage"
	"cecilia/internal/validation"
)

const (
	MaxPageLimit        = 100
	maxSlugSuggestTries = 100
)

const slugTakenMessage = "URL name already exists. Choose another."

// ImageUpload is a cover image received from a form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CreatePostInput carries the create form. Content is the raw JSON array
// and Keywords the comma-separated list as submitted.
type CreatePostInput struct {
	AuthorID        uint
	Title           string
	Subtitle        string
	URLName         string
	Content         string
	Keywords        string
	MetaTitle       string
	MetaDescription string
	MetaImage       string
	MetaImageAlt    string
	Image           *ImageUpload
}

// UpdatePostInput carries the edit form. Nil fields were not submitted
// and keep their stored value.
type UpdatePostInput struct {
	Title           *string
	Subtitle        *string
	URLName         *string
	Content         *string
	Keywords        *string
	MetaTitle       *string
	MetaDescription *string
	MetaImage       *string
	MetaImageAlt    *string
	Published       *bool
	Image           *ImageUpload
}

// PostPage is one page of the published listing.
type PostPage struct {
	Posts      []models.PostSummary
	Total      int64
	Page       int
	Limit      int
	TotalPages int
	HasMore    bool
}

type PostService struct {
	postRepo     repository.PostRepository
	store        storage.Store
	defaultCover string
}

func NewPostService(postRepo repository.PostRepository, store storage.Store, defaultCover string) *PostService {
	return &PostService{postRepo: postRepo, store: store, defaultCover: defaultCover}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	var fields []models.FieldError
	title := strings.TrimSpace(in.Title)
	if title == "" {
		fields = append(fields, models.FieldError{Field: "title", Message: "Title is required"})
	}
	urlName := validation.NormalizeSlug(in.URLName)
	if err := validation.ValidateSlug(urlName); err != nil {
		fields = append(fields, models.FieldError{Field: "urlName", Message: err.Error()})
	}
	blocks, contentFields := prepareContent(in.Content)
	fields = append(fields, contentFields...)

	var image *storage.Image
	if in.Image != nil {
		img, err := storage.ValidateImage(in.Image.ContentType, in.Image.Data)
		if err != nil {
			fields = append(fields, models.FieldError{Field: "image", Message: err.Error()})
		}
		image = img
	}
	if len(fields) > 0 {
		return nil, invalidPost(fields)
	}

	taken, err := s.postRepo.SlugTaken(ctx, urlName, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewConflictError(slugTakenMessage)
	}

	imageURL := s.defaultCover
	if image != nil {
		imageURL, err = s.upload(ctx, image)
		if err != nil {
			return nil, err
		}
	}

	post := &models.Post{
		Title:           title,
		Subtitle:        strings.TrimSpace(in.Subtitle),
		URLName:         urlName,
		Content:         blocks,
		ImageURL:        imageURL,
		AuthorID:        in.AuthorID,
		Published:       true,
		Keywords:        parseKeywords(in.Keywords),
		MetaTitle:       strings.TrimSpace(in.MetaTitle),
		MetaDescription: strings.TrimSpace(in.MetaDescription),
		MetaImage:       strings.TrimSpace(in.MetaImage),
		MetaImageAlt:    strings.TrimSpace(in.MetaImageAlt),
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		if image != nil {
			s.releaseImage(ctx, imageURL, "post_create_rollback")
		}
		if errors.Is(err, repository.ErrSlugTaken) {
			return nil, models.NewConflictError(slugTakenMessage)
		}
		return nil, err
	}

	observability.PostWrites.WithLabelValues("create").Inc()
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, id uint, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var fields []models.FieldError
	if in.Title != nil {
		if title := strings.TrimSpace(*in.Title); title == "" {
			fields = append(fields, models.FieldError{Field: "title", Message: "Title is required"})
		} else {
			post.Title = title
		}
	}
	slugChanged := false
	if in.URLName != nil {
		urlName := validation.NormalizeSlug(*in.URLName)
		if err := validation.ValidateSlug(urlName); err != nil {
			fields = append(fields, models.FieldError{Field: "urlName", Message: err.Error()})
		} else {
			slugChanged = urlName != post.URLName
			post.URLName = urlName
		}
	}
	if in.Content != nil {
		blocks, contentFields := prepareContent(*in.Content)
		fields = append(fields, contentFields...)
		post.Content = blocks
	}
	var image *storage.Image
	if in.Image != nil {
		img, err := storage.ValidateImage(in.Image.ContentType, in.Image.Data)
		if err != nil {
			fields = append(fields, models.FieldError{Field: "image", Message: err.Error()})
		}
		image = img
	}
	if len(fields) > 0 {
		return nil, invalidPost(fields)
	}

	applyString(&post.Subtitle, in.Subtitle)
	applyString(&post.MetaTitle, in.MetaTitle)
	applyString(&post.MetaDescription, in.MetaDescription)
	applyString(&post.MetaImage, in.MetaImage)
	applyString(&post.MetaImageAlt, in.MetaImageAlt)
	if in.Keywords != nil {
		post.Keywords = parseKeywords(*in.Keywords)
	}
	if in.Published != nil {
		post.Published = *in.Published
	}

	if slugChanged {
		taken, err := s.postRepo.SlugTaken(ctx, post.URLName, post.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, models.NewConflictError(slugTakenMessage)
		}
	}

	previousImage := post.ImageURL
	if image != nil {
		post.ImageURL, err = s.upload(ctx, image)
		if err != nil {
			return nil, err
		}
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		if image != nil {
			s.releaseImage(ctx, post.ImageURL, "post_update_rollback")
		}
		if errors.Is(err, repository.ErrSlugTaken) {
			return nil, models.NewConflictError(slugTakenMessage)
		}
		return nil, err
	}

	if image != nil && previousImage != post.ImageURL {
		s.releaseImage(ctx, previousImage, "post_update_old_image")
	}
	observability.PostWrites.WithLabelValues("update").Inc()
	return post, nil
}

// DeletePost removes the record first; the stored cover goes afterwards and
// its failure never undoes the delete.
func (s *PostService) DeletePost(ctx context.Context, id uint) error {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.releaseImage(ctx, post.ImageURL, "post_delete_image")
	observability.PostWrites.WithLabelValues("delete").Inc()
	return nil
}

// GetPublishedPost is the public read path.
func (s *PostService) GetPublishedPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetPublishedByID(ctx, id)
}

// ResolveCanonical loads a published post for /blog/{id}/{slug}. canonical
// is false when slug is stale and the caller must redirect.
func (s *PostService) ResolveCanonical(ctx context.Context, id uint, slug string) (post *models.Post, canonical bool, err error) {
	return s.postRepo.GetBySlugPair(ctx, id, slug)
}

func (s *PostService) ListPublished(ctx context.Context, page, limit int) (*PostPage, error) {
	if page < 1 {
		return nil, models.NewValidationError("Invalid pagination",
			models.FieldError{Field: "page", Message: "page must be 1 or greater"})
	}
	if limit < 1 || limit > MaxPageLimit {
		return nil, models.NewValidationError("Invalid pagination",
			models.FieldError{Field: "limit", Message: fmt.Sprintf("limit must be between 1 and %d", MaxPageLimit)})
	}

	offset := (page - 1) * limit
	posts, total, err := s.postRepo.ListPublished(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	return &PostPage{
		Posts:      summaries(posts),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		HasMore:    int64(offset+limit) < total,
	}, nil
}

// Search returns every match, newest first. includeUnpublished must only be
// set for authenticated callers.
func (s *PostService) Search(ctx context.Context, query string, includeUnpublished bool) ([]models.PostSummary, error) {
	posts, err := s.postRepo.Search(ctx, query, includeUnpublished)
	if err != nil {
		return nil, err
	}
	return summaries(posts), nil
}

func (s *PostService) ListAll(ctx context.Context) ([]models.PostSummary, error) {
	posts, err := s.postRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return summaries(posts), nil
}

// SuggestSlug derives a free url name from title, appending -2, -3, ...
// while the candidate is taken.
func (s *PostService) SuggestSlug(ctx context.Context, title string) (string, error) {
	base := validation.Slugify(title)
	if base == "" {
		return "", models.NewValidationError("Title has no usable characters",
			models.FieldError{Field: "title", Message: "title must contain letters or digits"})
	}

	candidate := base
	for i := 2; i < maxSlugSuggestTries+2; i++ {
		taken, err := s.postRepo.SlugTaken(ctx, candidate, 0)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", models.NewConflictError("No free URL name found for this title")
}

func (s *PostService) upload(ctx context.Context, img *storage.Image) (string, error) {
	url, err := s.store.Upload(ctx, storage.NewKey(img.Extension), img.Data, img.ContentType)
	if err != nil {
		return "", models.NewInternalError(fmt.Errorf("upload cover image: %w", err))
	}
	return url, nil
}

// releaseImage deletes a cover we manage. URLs outside the store, like the
// default cover, are left alone.
func (s *PostService) releaseImage(ctx context.Context, imageURL, operation string) {
	key, ok := s.store.KeyFromURL(imageURL)
	if !ok {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		observability.BestEffortFailure(ctx, operation, err, slog.String("key", key))
	}
}

func prepareContent(raw string) (content.Blocks, []models.FieldError) {
	if strings.TrimSpace(raw) == "" {
		return nil, []models.FieldError{{Field: "content", Message: "Content is required"}}
	}
	decoded, err := content.Decode(raw)
	if err != nil {
		return nil, []models.FieldError{{Field: "content", Message: content.ErrMalformed.Error()}}
	}
	blocks, err := content.Prepare(decoded)
	if err == nil {
		return blocks, nil
	}

	var ve *content.ValidationError
	if errors.As(err, &ve) {
		fields := make([]models.FieldError, len(ve.Problems))
		for i, p := range ve.Problems {
			fields[i] = models.FieldError{Field: p.Field, Message: p.Message}
		}
		return nil, fields
	}
	return nil, []models.FieldError{{Field: "content", Message: err.Error()}}
}

func invalidPost(fields []models.FieldError) error {
	for _, f := range fields {
		if f.Field == "content" && f.Message == content.ErrNoContent.Error() {
			return models.NewValidationError(content.ErrNoContent.Error(), fields...)
		}
	}
	return models.NewValidationError("Invalid post data", fields...)
}

func parseKeywords(raw string) []string {
	keywords := []string{}
	seen := map[string]bool{}
	for _, k := range strings.Split(raw, ",") {
		k = strings.TrimSpace(k)
		if k == "" || seen[strings.ToLower(k)] {
			continue
		}
		seen[strings.ToLower(k)] = true
		keywords = append(keywords, k)
	}
	return keywords
}

func applyString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func summaries(posts []models.Post) []models.PostSummary {
	out := make([]models.PostSummary, len(posts))
	for i := range posts {
		out[i] = posts[i].Summary()
	}
	return out
}
