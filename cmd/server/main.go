package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/qs-lzh/movie-review/config"
	"github.com/qs-lzh/movie-review/internal/app"
	"github.com/qs-lzh/movie-review/internal/cache"
	"github.com/qs-lzh/movie-review/internal/database"
	"github.com/qs-lzh/movie-review/internal/logger"
	"github.com/qs-lzh/movie-review/internal/mq"
	"github.com/qs-lzh/movie-review/internal/router"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zl.Sync()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	db, err := database.Open(cfg.DatabaseDSN, zl.Named("gorm"))
	if err != nil {
		return err
	}

	var redisCache *cache.RedisCache
	if cfg.CacheURL != "" {
		redisCache, err = cache.NewRedisCache(cfg.CacheURL)
	} else {
		zl.Info("CACHE_URL not set, starting embedded redis")
		redisCache, err = cache.NewEmbeddedRedisCache()
	}
	if err != nil {
		database.Close(db)
		return err
	}

	var mqConn *amqp.Connection
	if cfg.MQURL != "" {
		mqConn, err = mq.Dial(cfg.MQURL)
		if err != nil {
			redisCache.Close()
			database.Close(db)
			return err
		}
	}

	application, err := app.New(cfg, db, redisCache, mqConn, zl)
	if err != nil {
		if mqConn != nil {
			mqConn.Close()
		}
		redisCache.Close()
		database.Close(db)
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			zl.Warn("failed to close resources", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Init(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.New(application),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("listening", zap.String("addr", cfg.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
