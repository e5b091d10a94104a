package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"

	_ "github.com/voyagemap/itinerary-sync/docs"
	"github.com/voyagemap/itinerary-sync/internal/api/handler"
	"github.com/voyagemap/itinerary-sync/internal/api/middleware"
	"github.com/voyagemap/itinerary-sync/internal/core/service"
	"github.com/voyagemap/itinerary-sync/internal/infrastructure/db/sqlite"
)

// Deps carries everything the router needs. Limiters are constructed by the
// caller so their lifecycle (cleanup loops) is owned by main.
type Deps struct {
	Store       *sqlite.Store
	Redis       *redis.Client // nil when rate limiting runs in-memory
	APILimiter  middleware.Limiter
	SyncLimiter middleware.Limiter
	StaticDir   string
	Logger      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echoprometheus.NewMiddleware("http"))

	// --- Dependencies ---
	syncRepo := sqlite.NewSyncRepository(deps.Store)
	syncService := service.NewSyncService(syncRepo, deps.Logger)
	syncHandler := handler.NewSyncHandler(syncService)
	adminHandler := handler.NewAdminHandler(syncService)

	// --- API routes ---
	// The general limit covers every /api route; sync routes carry a second,
	// stricter endpoint-specific limit on top.
	apiGroup := e.Group("/api", middleware.RateLimit(deps.APILimiter, "api", deps.Logger))

	syncGroup := apiGroup.Group("/sync", middleware.RateLimit(deps.SyncLimiter, "sync", deps.Logger))
	syncGroup.GET("/:user_id", syncHandler.Get)
	syncGroup.POST("/:user_id", syncHandler.Put)

	apiGroup.GET("/admin/stats", adminHandler.Stats)

	// --- Health probes ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Store, deps.Redis)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Static client ---
	if deps.StaticDir != "" {
		e.Static("/", deps.StaticDir)
	}

	return e
}
