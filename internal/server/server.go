// Package server contains the HTTP handlers for the site, the blog and the admin API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "cecilia/docs" // swagger docs
	"cecilia/internal/config"
	"cecilia/internal/middleware"
	"cecilia/internal/models"
	"cecilia/internal/repository"
	"cecilia/internal/service"
	"cecilia/internal/sitemap"
	"cecilia/internal/storage"
	"cecilia/internal/web"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// bodyLimit leaves room for a maximum size cover image plus the form fields.
const bodyLimit = storage.MaxImageBytes + 2<<20

// Deps are the handles built by the composition root.
type Deps struct {
	DB         *gorm.DB
	Redis      *redis.Client
	Store      storage.Store
	FixedPages []sitemap.FixedPage
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	store          storage.Store
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	limiter        *middleware.Limiter
	postService    *service.PostService
	userService    *service.UserService
	authService    *service.AuthService
	sitemap        *sitemap.Generator
	pages          *web.Pages
}

// NewServer creates a Server using already-initialized dependencies.
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.DB == nil || deps.Store == nil {
		return nil, errors.New("server requires a database and an object store")
	}

	pages, err := web.New(cfg.SiteBaseURL)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(deps.DB)
	postRepo := repository.NewPostRepository(deps.DB)

	return &Server{
		config:         cfg,
		db:             deps.DB,
		redis:          deps.Redis,
		store:          deps.Store,
		promMiddleware: middleware.InitMetrics("cecilia-api"),
		limiter:        middleware.NewLimiter(deps.Redis, cfg.Env),
		postService:    service.NewPostService(postRepo, deps.Store, cfg.DefaultCoverImage),
		userService:    service.NewUserService(userRepo),
		authService:    service.NewAuthService(userRepo, deps.Redis, cfg.JWTSecret, cfg.SessionTTL()),
		sitemap:        sitemap.NewGenerator(postRepo, cfg.SiteBaseURL, deps.FixedPages),
		pages:          pages,
	}, nil
}

// App builds the Fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	app := fiber.New(fiber.Config{
		AppName:      "Cecília Digital",
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	if local, ok := storage.Unwrap(s.store).(*storage.LocalStore); ok {
		app.Static(local.MountPath(), local.Dir(), fiber.Static{MaxAge: 31536000})
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Cecília Digital Metrics",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/login", s.limiter.Limit("login", 10, 5*time.Minute), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)
	auth.Get("/session", s.AuthRequired(), s.GetSession)
	auth.Post("/register", s.AuthRequired(), s.Register)

	// Specific /posts routes before the generic /:id
	posts := api.Group("/posts")
	posts.Get("/list", s.ListPosts)
	posts.Get("/admin/list", s.AuthRequired(), s.AdminListPosts)
	posts.Get("/slug-suggestion", s.AuthRequired(), s.SuggestSlug)
	posts.Post("/create", s.AuthRequired(), s.CreatePost)
	posts.Put("/edit/:id", s.AuthRequired(), s.UpdatePost)
	posts.Get("/:id", s.GetPost)
	posts.Delete("/:id", s.AuthRequired(), s.DeletePost)

	blog := api.Group("/blog")
	blog.Get("/posts", s.GetBlogPosts)
	blog.Get("/search", s.limiter.Limit("search", 30, time.Minute), s.SearchPosts)

	users := api.Group("/users", s.AuthRequired())
	users.Get("/", s.ListUsers)
	users.Post("/", s.CreateUser)
	users.Get("/:id", s.GetUser)
	users.Put("/:id", s.UpdateUser)
	users.Delete("/:id", s.DeleteUser)

	app.Get("/sitemap.xml", s.SitemapIndex)
	app.Get("/sitemap-fixed.xml", s.SitemapFixed)
	app.Get("/sitemap-blog/:page", s.SitemapPage)

	app.Get("/blog", s.BlogIndex)
	app.Get("/blog/:id/:slug", s.BlogPost)
	app.Get("/blog/:id", s.BlogPostRedirect)
	app.Get("/plataforma", func(c *fiber.Ctx) error {
		return c.Redirect("/#produtos", fiber.StatusPermanentRedirect)
	})
}

// LivenessCheck handles liveness checks
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness checks. Redis is optional: a
// missing client reports "disabled" and does not fail the check.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// errorHandler answers errors that escaped the handlers in the API error shape.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(models.ErrorResponse{
			Error: fe.Message,
			Code:  codeForStatus(fe.Code),
		})
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError, err)
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusUnauthorized:
		return models.CodeUnauthorized
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return models.CodeNotFound
	case fiber.StatusConflict:
		return models.CodeConflict
	default:
		return models.CodeValidation
	}
}

// Start serves on the configured port until Shutdown.
func (s *Server) Start() error {
	app := s.App()
	slog.Info("server starting", slog.String("port", s.config.Port))
	if err := app.Listen(":" + s.config.Port); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and closes the DB and Redis handles.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			slog.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if closer, ok := storage.Unwrap(s.store).(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			slog.Error("error closing object store", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			slog.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			slog.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	slog.Info("server shutdown complete")
	return nil
}
