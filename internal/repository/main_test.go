package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cecilia/internal/content"
	"cecilia/internal/database"
	"cecilia/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func newAuthor(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	u := &models.User{Email: fmt.Sprintf("author-%d@cecilia.digital", time.Now().UnixNano()), Name: "Autora", Password: "hash"}
	require.NoError(t, db.Create(u).Error)
	return u
}

// seedPosts inserts n posts one minute apart, the newest last.
func seedPosts(t *testing.T, db *gorm.DB, authorID uint, n int, published func(i int) bool) []models.Post {
	t.Helper()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	posts := make([]models.Post, n)
	for i := range posts {
		posts[i] = models.Post{
			Title:     fmt.Sprintf("Post %03d", i),
			URLName:   fmt.Sprintf("post-%03d", i),
			Content:   content.Blocks{content.TextBlock("corpo")},
			ImageURL:  "/images/about-cover.jpg",
			AuthorID:  authorID,
			Published: published(i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	require.NoError(t, db.WithContext(context.Background()).CreateInBatches(posts, 100).Error)
	return posts
}

func allPublished(int) bool { return true }
