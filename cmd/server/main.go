// Package main starts the itinerary sync HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/voyagemap/itinerary-sync/internal/api"
	"github.com/voyagemap/itinerary-sync/internal/api/middleware"
	"github.com/voyagemap/itinerary-sync/internal/infrastructure/db/redis"
	"github.com/voyagemap/itinerary-sync/internal/infrastructure/db/sqlite"
	"github.com/voyagemap/itinerary-sync/internal/pkg/config"
	"github.com/voyagemap/itinerary-sync/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Store: the single shared handle, held for the process lifetime ---
	store, err := sqlite.Open(cfg.SQLite.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open sync store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close sync store")
		}
	}()

	// --- Redis (optional): backs rate-limit counters when configured ---
	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer func() { _ = rdb.Close() }()
	}

	// --- Rate limiters ---
	apiWindow := time.Duration(cfg.RateLimit.APIWindowMinutes) * time.Minute
	syncWindow := time.Duration(cfg.RateLimit.SyncWindowSeconds) * time.Second

	var apiLimiter, syncLimiter middleware.Limiter
	if rdb != nil {
		apiLimiter = redis.NewWindowLimiter(rdb, "api", cfg.RateLimit.APIRequests, apiWindow)
		syncLimiter = redis.NewWindowLimiter(rdb, "sync", cfg.RateLimit.SyncRequests, syncWindow)
	} else {
		apiMem := middleware.NewMemoryLimiter(cfg.RateLimit.APIRequests, apiWindow)
		syncMem := middleware.NewMemoryLimiter(cfg.RateLimit.SyncRequests, syncWindow)
		defer apiMem.Stop()
		defer syncMem.Stop()
		apiLimiter = apiMem
		syncLimiter = syncMem
	}

	e := api.NewRouter(api.Deps{
		Store:       store,
		Redis:       rdb,
		APILimiter:  apiLimiter,
		SyncLimiter: syncLimiter,
		StaticDir:   cfg.StaticDir,
		Logger:      log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, draining")

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(drainCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
