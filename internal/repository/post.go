// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"cecilia/internal/cache"
	"cecilia/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// summaryColumns is what listings read; content stays in the table.
var summaryColumns = []string{"id", "title", "subtitle", "url_name", "image_url", "published", "created_at", "updated_at"}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetPublishedByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlugPair(ctx context.Context, id uint, urlName string) (*models.Post, bool, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	SlugTaken(ctx context.Context, urlName string, excludeID uint) (bool, error)
	ListPublished(ctx context.Context, limit, offset int) ([]models.Post, int64, error)
	ListAll(ctx context.Context) ([]models.Post, error)
	Search(ctx context.Context, query string, includeUnpublished bool) ([]models.Post, error)
	CountPublished(ctx context.Context) (int64, error)
	SitemapEntries(ctx context.Context, limit, offset int) ([]models.SitemapEntry, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
	if isDuplicate(err) {
		return ErrSlugTaken
	}
	if err != nil {
		return err
	}
	cache.InvalidateSitemaps(ctx)
	return nil
}

// GetByID loads a post in any state, with its author.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Post", id)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPublishedByID is the public read path and is served from the cache.
func (r *postRepository) GetPublishedByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		return r.db.WithContext(ctx).
			Preload("Author").
			Where("published = ?", true).
			First(&post, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Post", id)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetBySlugPair loads a published post by id and reports whether urlName is
// its current slug. A false result means the caller should redirect.
func (r *postRepository) GetBySlugPair(ctx context.Context, id uint, urlName string) (*models.Post, bool, error) {
	post, err := r.GetPublishedByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return post, post.URLName == urlName, nil
}

// Update writes every column of post. Callers apply partial changes to a
// loaded post first.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).
		Model(post).
		Select("*").
		Omit("CreatedAt", "Author").
		Updates(post)
	if isDuplicate(res.Error) {
		return ErrSlugTaken
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}

// SlugTaken reports whether a post other than excludeID uses urlName.
func (r *postRepository) SlugTaken(ctx context.Context, urlName string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Post{}).Where("url_name = ?", urlName)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) ListPublished(ctx context.Context, limit, offset int) ([]models.Post, int64, error) {
	var total int64
	if err := r.published(ctx).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	posts := []models.Post{}
	if int64(offset) >= total {
		return posts, total, nil
	}
	err := r.published(ctx).
		Select(summaryColumns).
		Order(PostOrder).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) ListAll(ctx context.Context) ([]models.Post, error) {
	posts := []models.Post{}
	err := r.db.WithContext(ctx).
		Select(summaryColumns).
		Order(PostOrder).
		Find(&posts).Error
	return posts, err
}

// Search matches query case-insensitively against title and subtitle. LIKE
// wildcards in query match literally.
func (r *postRepository) Search(ctx context.Context, query string, includeUnpublished bool) ([]models.Post, error) {
	posts := []models.Post{}
	query = strings.TrimSpace(query)
	if query == "" {
		return posts, nil
	}

	pattern := containsPattern(query)
	q := r.db.WithContext(ctx).
		Select(summaryColumns).
		Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(subtitle) LIKE ? ESCAPE '\')`, pattern, pattern)
	if !includeUnpublished {
		q = q.Where("published = ?", true)
	}
	err := q.Order(PostOrder).Find(&posts).Error
	return posts, err
}

func (r *postRepository) CountPublished(ctx context.Context) (int64, error) {
	var total int64
	err := r.published(ctx).Count(&total).Error
	return total, err
}

func (r *postRepository) SitemapEntries(ctx context.Context, limit, offset int) ([]models.SitemapEntry, error) {
	entries := []models.SitemapEntry{}
	err := r.published(ctx).
		Select("id", "url_name", "created_at", "updated_at").
		Order(PostOrder).
		Limit(limit).
		Offset(offset).
		Scan(&entries).Error
	return entries, err
}

func (r *postRepository) published(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Post{}).Where("published = ?", true)
}
