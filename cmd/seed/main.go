// Command seed fills the database with demo authors and blog posts.
package main

import (
	"context"
	"flag"
	"log"

	"cecilia/internal/cache"
	"cecilia/internal/config"
	"cecilia/internal/database"
	"cecilia/internal/seed"
)

func main() {
	numAuthors := flag.Int("authors", 2, "Number of authors to create")
	numPosts := flag.Int("posts", 40, "Number of posts to create")
	draftRatio := flag.Float64("drafts", 0.1, "Share of posts left unpublished, 0 to 1")
	maxDays := flag.Int("days", 365, "Spread post dates over this many past days")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed, 0 picks one")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d authors, %d posts, clean=%v\n", *numAuthors, *numPosts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	cache.InitRedis(cfg.RedisURL)

	res, err := seed.Seed(context.Background(), db, seed.Options{
		NumAuthors:  *numAuthors,
		NumPosts:    *numPosts,
		DraftRatio:  *draftRatio,
		MaxDays:     *maxDays,
		ShouldClean: *shouldClean,
		Seed:        *randSeed,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ All done! Created %d authors and %d posts.\n", len(res.Authors), res.Posts)
	log.Printf("📧 All seeded authors have the password: %s\n", seed.DefaultPassword)
}
