// Package server assembles the Fiber application from its dependencies.
package server

import (
	"context"
	"strings"
	"time"

	"qrmenu/internal/config"
	"qrmenu/internal/handlers"
	"qrmenu/internal/metrics"
	"qrmenu/internal/middleware"
	"qrmenu/internal/repositories"
	"qrmenu/internal/services"
	"qrmenu/pkg/logger"
	"qrmenu/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// bodyLimit leaves room for the multipart framing around a 10MB wallpaper.
const bodyLimit = 12 << 20

// Deps are the external resources the application runs on.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Storage  storage.Storage
	Logger   *zap.Logger
	Registry *prometheus.Registry
}

// Server is the assembled application.
type Server struct {
	App    *fiber.App
	Admins *services.AdminService
	Tokens *services.TokenService
}

// New wires repositories, services and handlers into a Fiber app.
func New(d Deps) *Server {
	cfg, log := d.Config, d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if d.Registry == nil {
		d.Registry = prometheus.NewRegistry()
	}
	m := metrics.New(d.Registry)

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(d.DB)
	storeRepo := repositories.NewGORMStoreRepository(d.DB)
	categoryRepo := repositories.NewGORMCategoryRepository(d.DB)
	productRepo := repositories.NewGORMProductRepository(d.DB)
	wallpaperRepo := repositories.NewGORMWallpaperRepository(d.DB)
	accountRepo := repositories.NewGORMAccountRepository(d.DB)

	// --- Services ---
	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry, cfg.JWTMaxAge)
	authService := services.NewAuthService(userRepo, tokenService, log.Named("auth"), m)
	assetService := services.NewAssetService(d.Storage, cfg.StorageProtectedPrefixes, log.Named("assets"), m)
	storeService := services.NewStoreService(storeRepo, wallpaperRepo, assetService, log.Named("stores"))
	categoryService := services.NewCategoryService(categoryRepo, storeRepo, log.Named("categories"))
	productService := services.NewProductService(productRepo, categoryRepo, assetService, log.Named("products"))
	wallpaperService := services.NewWallpaperService(wallpaperRepo, assetService, log.Named("wallpapers"))
	adminService := services.NewAdminService(userRepo, storeRepo, accountRepo, assetService, log.Named("admins"))
	menuService := services.NewMenuService(storeRepo, categoryRepo, productRepo)

	// --- Fiber App ---
	app := fiber.New(fiber.Config{
		AppName:      "qrmenu",
		BodyLimit:    bodyLimit,
		ErrorHandler: handlers.ErrorHandler(log),
	})

	// --- Middleware ---
	app.Use(requestid.New())
	app.Use(m.Middleware())
	app.Use(logger.Middleware(log))
	app.Use(recover.New())

	app.Get("/health", health(d.DB))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	if local, ok := d.Storage.(*storage.Local); ok && strings.HasPrefix(cfg.StorageBaseURL, "/") {
		app.Static(cfg.StorageBaseURL, local.Root())
	}

	// --- API Routes ---
	apiV1 := app.Group("/api/v1", middleware.Timeout(cfg.RequestTimeout))

	// Public routes
	handlers.NewMenuHandler(menuService).RegisterRoutes(apiV1)
	authn := middleware.Authenticate(authService, tokenService, log.Named("authn"), m)
	handlers.NewAuthHandler(authService, cfg.JWTExpiry, cfg.CookieSecure, log.Named("auth")).RegisterRoutes(apiV1, authn)

	// Protected routes: authenticated and bound to a tenant scope. The chain
	// is attached per resource prefix so unknown paths still fall through to 404.
	protected := []fiber.Handler{authn, middleware.ResolveTenant(storeRepo, log.Named("tenant"))}
	handlers.NewStoreHandler(storeService).RegisterRoutes(apiV1, protected...)
	handlers.NewCategoryHandler(categoryService).RegisterRoutes(apiV1, protected...)
	handlers.NewProductHandler(productService).RegisterRoutes(apiV1, protected...)
	handlers.NewWallpaperHandler(wallpaperService).RegisterRoutes(apiV1, protected...)
	handlers.NewAdminHandler(adminService, authService, cfg.ReauthMaxAge).RegisterRoutes(apiV1, protected...)

	return &Server{App: app, Admins: adminService, Tokens: tokenService}
}

func health(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, code := "healthy", fiber.StatusOK
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status, code = "unhealthy", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}
