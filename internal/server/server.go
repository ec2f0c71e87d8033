// Package server assembles the fiber application.
package server

import (
	"path/filepath"
	"strings"
	"time"

	"proshop/internal/config"
	"proshop/internal/handlers"
	"proshop/internal/metrics"
	"proshop/internal/middleware"
	"proshop/internal/repositories"
	"proshop/internal/services"
	"proshop/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

// Deps are the collaborators the application is built from. Publisher, Verifier and
// LoginLimiter are optional.
type Deps struct {
	Config       *config.Config
	Logger       *zap.Logger
	Store        *repositories.Store
	Disk         storage.Disk
	Publisher    services.EventPublisher
	Verifier     services.PaymentVerifier
	LoginLimiter *middleware.IPRateLimiter
}

// New builds the application. Middleware and routes are mounted in this order:
// recover, request id, CORS, request logging (development only), metrics, health check,
// API routes, /metrics, uploads, frontend build and catch-all (production only), 404.
// Every error any of them returns reaches the error handler installed in fiber.Config.
func New(d Deps) *fiber.App {
	cfg := d.Config
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bodyLimit := cfg.BodyLimitMB
	if bodyLimit <= 0 {
		bodyLimit = 10
	}
	app := fiber.New(fiber.Config{
		AppName:      "proshop",
		BodyLimit:    bodyLimit * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(logger, cfg.IsProduction()),
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: !cfg.IsProduction()}))
	app.Use(requestid.New())
	app.Use(corsMiddleware(cfg.CORSOrigins))
	if cfg.IsDevelopment() {
		app.Use(middleware.RequestLogger(logger))
	}
	app.Use(metrics.Middleware())

	// --- Services ---
	authService := services.NewAuthService(d.Store.Users, cfg.JWTSecret)
	userService := services.NewUserService(d.Store.Users)
	productService := services.NewProductService(d.Store.Products, cfg.PaginationLimit)
	orderService := services.NewOrderService(d.Store.Orders, d.Store.Products, d.Store.Users, d.Publisher, d.Verifier, logger)
	uploadService := services.NewUploadService(d.Disk)

	// --- Handlers ---
	var loginLimit middleware.Guard
	if d.LoginLimiter != nil {
		loginLimit = d.LoginLimiter.Guard()
	}
	userHandler := handlers.NewUserHandler(authService, userService, loginLimit, !cfg.IsDevelopment())
	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(orderService)
	uploadHandler := handlers.NewUploadHandler(uploadService)
	configHandler := handlers.NewConfigHandler(cfg.PayPalClientID)

	protect := middleware.Protect(authService)

	// --- Health Check Endpoint ---
	app.Get("/api", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- API Routes ---
	api := app.Group("/api")
	productHandler.RegisterRoutes(api, protect)
	userHandler.RegisterRoutes(api, protect)
	orderHandler.RegisterRoutes(api, protect)
	uploadHandler.RegisterRoutes(api, protect)
	configHandler.RegisterRoutes(api)

	app.Get("/metrics", metrics.Handler())

	// --- Static files ---
	if disk, ok := d.Disk.(*storage.LocalDisk); ok {
		app.Static("/uploads", disk.Root())
	}
	if cfg.IsProduction() {
		app.Static("/", cfg.FrontendDir)
		index := filepath.Join(cfg.FrontendDir, "index.html")
		app.Get("*", func(c *fiber.Ctx) error {
			if strings.HasPrefix(c.Path(), "/api") {
				return c.Next()
			}
			return c.SendFile(index)
		})
	}

	app.Use(middleware.NotFound)
	return app
}

func corsMiddleware(origins string) fiber.Handler {
	origins = strings.TrimSpace(origins)
	if origins == "" || origins == "*" {
		return cors.New()
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowCredentials: true,
	})
}
