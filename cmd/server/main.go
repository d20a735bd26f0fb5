package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/starwars-catalog/internal/app"
	"github.com/iliyamo/starwars-catalog/internal/config"
	"github.com/iliyamo/starwars-catalog/internal/handler"
	"github.com/iliyamo/starwars-catalog/internal/logger"
	"github.com/iliyamo/starwars-catalog/internal/middleware"
	"github.com/iliyamo/starwars-catalog/internal/queue"
	"github.com/iliyamo/starwars-catalog/internal/router"
	"github.com/iliyamo/starwars-catalog/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err) // logger not built yet
	}
	lg, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Console: cfg.Env == "dev"})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := app.OpenDB(ctx, cfg)
	if err != nil {
		lg.Fatal("database", zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}

	rdb, err := config.NewRedisClient()
	if err != nil {
		lg.Warn("redis unavailable; cache and rate limit disabled", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var events service.EventPublisher
	if cfg.EventsEnabled {
		events = queue.NewPublisher(cfg.AMQPURL, cfg.FavoritesQueue, lg)
	}
	svcs := app.NewServices(db, events, lg)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Metrics(), middleware.RequestLogger(lg), echomw.Recover())

	health := &handler.HealthHandler{}
	if db != nil {
		health.DB = db
	}
	router.RegisterRoutes(e, health)

	cacheCfg := config.LoadCacheConfig()
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, lg)
	for _, svc := range svcs.All() {
		kind := svc.Kind()
		h := handler.NewResourceHandler(svc, handler.NewPresenter(kind, cfg.Location), cfg.BaseURL, lg)
		router.RegisterResource(e, h, limiter, middleware.NewRedisCache(cacheCfg, rdb, kind.Plural))
		router.RegisterAdmin(e, h)
	}

	addr := ":" + cfg.Port
	go func() {
		lg.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", cfg.StoreDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Error("shutdown", zap.Error(err))
	}
}
