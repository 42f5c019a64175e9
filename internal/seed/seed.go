package seed

import (
	"context"
	"fmt"
	"log/slog"

	"cecilia/internal/cache"
	"cecilia/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumAuthors  int
	NumPosts    int
	DraftRatio  float64
	MaxDays     int
	ShouldClean bool
	Seed        int64
}

func (o Options) withDefaults() Options {
	if o.NumAuthors <= 0 {
		o.NumAuthors = 1
	}
	if o.MaxDays <= 0 {
		o.MaxDays = 365
	}
	if o.DraftRatio < 0 || o.DraftRatio > 1 {
		o.DraftRatio = 0
	}
	return o
}

// Result reports what Seed created.
type Result struct {
	Authors []models.User
	Posts   int
}

// Seed fills the database with demo authors and posts.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	db = db.WithContext(ctx)
	f := NewFactory(db, opts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return nil, err
		}
	}

	res := &Result{}
	for range opts.NumAuthors {
		u, err := f.CreateUser()
		if err != nil {
			return nil, err
		}
		res.Authors = append(res.Authors, *u)
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := range opts.NumPosts {
		posts = append(posts, f.BuildPost(&res.Authors[i%len(res.Authors)]))
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("create seed posts: %w", err)
	}
	res.Posts = len(posts)

	cache.InvalidateSitemaps(ctx)
	slog.InfoContext(ctx, "seed completed",
		slog.Int("authors", len(res.Authors)),
		slog.Int("posts", res.Posts),
	)
	return res, nil
}

func clearData(db *gorm.DB) error {
	for _, m := range []any{&models.Post{}, &models.User{}} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
			return fmt.Errorf("clear seed data: %w", err)
		}
	}
	return nil
}
