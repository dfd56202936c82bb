// Command server runs the rental API over the configured storage backend.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/rental-api/internal/config"
	"github.com/iliyamo/rental-api/internal/database"
	"github.com/iliyamo/rental-api/internal/handler"
	"github.com/iliyamo/rental-api/internal/logger"
	"github.com/iliyamo/rental-api/internal/middleware"
	"github.com/iliyamo/rental-api/internal/queue"
	"github.com/iliyamo/rental-api/internal/relation"
	"github.com/iliyamo/rental-api/internal/router"
	"github.com/iliyamo/rental-api/internal/search"
	"github.com/iliyamo/rental-api/internal/service"
	"github.com/iliyamo/rental-api/internal/storage"
	"github.com/iliyamo/rental-api/internal/storage/dbstore"
	"github.com/iliyamo/rental-api/internal/storage/file"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.Error("storage init failed", "type", cfg.StorageType, "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("storage close failed", "err", err)
		}
	}()

	rel := relation.New(store)
	var events handler.Events
	if cfg.EventsEnabled {
		events = service.NewPublisher(cfg.RabbitURL)
	}
	h := handler.NewHandler(store, rel, search.NewEngine(store, rel), events, cfg.BcryptCost)

	if cfg.ConsumeEvents {
		go func() {
			if err := queue.StartChangeConsumer(ctx, cfg.RabbitURL, "logs"); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("change consumer stopped", "err", err)
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Info("redis unavailable; cache and rate limit disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterRoutes(e, h)

	addr := ":" + cfg.Port
	log.Info("listening", "addr", addr, "env", cfg.Env, "storage", storageName(cfg))

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown failed", "err", err)
	}
}

// openStorage builds the backend named by the configuration and loads it.
func openStorage(ctx context.Context, cfg config.Config) (storage.Storage, error) {
	var store storage.Storage
	if cfg.UsesDB() {
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, err
		}
		store = dbstore.New(db)
	} else {
		store = file.New(cfg.StorageFile)
	}
	if err := store.Reload(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

func storageName(cfg config.Config) string {
	if cfg.UsesDB() {
		return "mysql"
	}
	return "file:" + cfg.StorageFile
}
