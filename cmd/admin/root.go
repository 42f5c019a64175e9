package main

import (
	"context"
	"fmt"
	"os"

	"cecilia/internal/cache"
	"cecilia/internal/config"
	"cecilia/internal/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   "cecilia-admin",
	Short: "Maintenance tasks for the Cecília Digital site",
	Long: `cecilia-admin manages admin accounts, applies schema changes and
inspects the blog from the command line. Settings come from the same
config files and environment variables as the server.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// runtime is what most commands need: settings and a database handle.
type runtime struct {
	cfg *config.Config
	db  *gorm.DB
}

func connect(ctx context.Context) (*runtime, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	cache.InitRedis(cfg.RedisURL)
	return &runtime{cfg: cfg, db: db.WithContext(ctx)}, nil
}

func (r *runtime) Close() {
	if sqlDB, err := r.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if c := cache.GetClient(); c != nil {
		_ = c.Close()
	}
}
