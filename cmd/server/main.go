// Command server runs the Cecília Digital site, blog and admin API.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cecilia/internal/bootstrap"
	"cecilia/internal/config"
	"cecilia/internal/observability"
	"cecilia/internal/repository"
	"cecilia/internal/server"
	"cecilia/internal/service"
	"cecilia/internal/sitemap"
	"cecilia/internal/storage"
)

// @title Cecília Digital API
// @version 1.0
// @description Blog and admin API for the Cecília Digital site.

// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "cecilia-api",
		ServiceVersion: "1.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	db, rdb, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	ctx := context.Background()
	store, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	fixed, err := sitemap.LoadFixedPages(cfg.SitemapFixedPagesFile)
	if err != nil {
		log.Fatalf("Failed to load fixed sitemap pages: %v", err)
	}
	if len(fixed) == 0 {
		slog.Warn("no fixed sitemap pages loaded", slog.String("file", cfg.SitemapFixedPagesFile))
	}

	users := service.NewUserService(repository.NewUserRepository(db))
	if _, err := bootstrap.EnsureAdmin(ctx, cfg, users); err != nil {
		log.Fatalf("Failed to ensure admin account: %v", err)
	}

	srv, err := server.NewServer(cfg, server.Deps{
		DB:         db,
		Redis:      rdb,
		Store:      store,
		FixedPages: fixed,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		slog.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", slog.String("error", err.Error()))
		}
		if err := shutdownTracing(ctx); err != nil {
			slog.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatal(err)
	}
}
