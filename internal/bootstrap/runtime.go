// Package bootstrap wires the process-wide handles and runs the one-time
// startup steps.
package bootstrap

import (
	"fmt"

	"cecilia/internal/cache"
	"cecilia/internal/config"
	"cecilia/internal/database"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis. The Redis client is nil
// when Redis is unreachable; the app then runs without a cache.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return db, cache.GetClient(), nil
}
