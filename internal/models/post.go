// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"cecilia/internal/content"

	"gorm.io/datatypes"
)

// Post is a blog article. ID and URLName together form its canonical URL.
type Post struct {
	ID              uint                        `gorm:"primaryKey" json:"_id"`
	Title           string                      `gorm:"not null" json:"title"`
	Subtitle        string                      `json:"subtitle,omitempty"`
	URLName         string                      `gorm:"column:url_name;uniqueIndex;size:200;not null" json:"urlName"`
	Content         content.Blocks              `gorm:"not null" json:"content"`
	ImageURL        string                      `gorm:"not null" json:"imageUrl"`
	AuthorID        uint                        `gorm:"not null;index" json:"authorId"`
	Author          *User                       `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Published       bool                        `gorm:"not null;index:idx_posts_published_created,priority:1" json:"published"`
	Keywords        datatypes.JSONSlice[string] `json:"keywords,omitempty"`
	MetaTitle       string                      `json:"metaTitle,omitempty"`
	MetaDescription string                      `json:"metaDescription,omitempty"`
	MetaImage       string                      `json:"metaImage,omitempty"`
	MetaImageAlt    string                      `json:"metaImageAlt,omitempty"`
	CreatedAt       time.Time                   `gorm:"index:idx_posts_published_created,priority:2" json:"createdAt"`
	UpdatedAt       time.Time                   `json:"updatedAt"`
}

// PostSummary is the listing projection of a post.
type PostSummary struct {
	ID        uint      `json:"_id"`
	Title     string    `json:"title"`
	Subtitle  string    `json:"subtitle,omitempty"`
	URLName   string    `json:"urlName"`
	ImageURL  string    `json:"imageUrl"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary projects p for listings.
func (p *Post) Summary() PostSummary {
	return PostSummary{
		ID:        p.ID,
		Title:     p.Title,
		Subtitle:  p.Subtitle,
		URLName:   p.URLName,
		ImageURL:  p.ImageURL,
		Published: p.Published,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// SitemapEntry is the minimal projection the sitemap needs.
type SitemapEntry struct {
	ID        uint
	URLName   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
