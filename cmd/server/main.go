package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/salmonco/sorabang/internal/analytics"
	"github.com/salmonco/sorabang/internal/api"
	"github.com/salmonco/sorabang/internal/api/middleware"
	"github.com/salmonco/sorabang/internal/blob"
	"github.com/salmonco/sorabang/internal/config"
	"github.com/salmonco/sorabang/internal/handlers"
	"github.com/salmonco/sorabang/internal/metrics"
	"github.com/salmonco/sorabang/internal/recorder"
	"github.com/salmonco/sorabang/internal/room"
	"github.com/salmonco/sorabang/internal/store"
)

const version = "0.1.0"

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Select a data store. DATABASE_URL means hosted PostgreSQL; otherwise
	// a local SQLite file keeps the server dependency-free.
	var dataStore store.DataStore
	if cfg.DatabaseURL != "" {
		logger.Info().Msg("running database migrations...")
		if err := store.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
		logger.Info().Msg("migrations completed")

		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		dataStore = pgStore
		logger.Info().Msg("connected to PostgreSQL")
	} else {
		sqlitePath := cfg.SQLitePath
		sqliteStore, err := store.NewSQLiteStore(ctx, sqlitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		dataStore = sqliteStore
		logger.Info().Str("path", sqlitePath).Msg("using local SQLite store")
	}
	defer dataStore.Close()

	// Audio storage: a media directory served at /media/, or inline data:
	// URLs when none is configured.
	var blobs blob.Store
	if cfg.MediaDir != "" {
		fsStore, err := blob.NewFSStore(cfg.MediaDir, cfg.BaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("media dir setup failed")
		}
		blobs = fsStore
		logger.Info().Str("dir", cfg.MediaDir).Msg("storing audio on disk")
	} else {
		blobs = blob.NewInlineStore()
		logger.Info().Msg("no media dir configured, inlining audio as data URLs")
	}

	// Redis backs the rate limiter when available
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisClient.Close()
		logger.Info().Msg("connected to Redis")
	}

	ac := analytics.New(cfg.AmplitudeAPIKey, cfg.DataDir, version, logger)
	defer ac.Close()

	sessions := recorder.NewSessionManager(logger)
	sessions.OnExpire(func() { metrics.RecordingSessionsExpired.Inc() })
	defer sessions.Close()

	rooms := room.NewService(dataStore, blobs, logger)
	h := handlers.NewHandler(rooms, dataStore, sessions, ac, cfg.BaseURL, logger)

	router := api.NewRouter(logger, h, redisClient, middleware.RateLimiterConfig{
		Whitelist:        cfg.RateLimitWhitelist,
		AutoBlockEnabled: cfg.AutoBlockEnabled,
	}, cfg.MediaDir)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting sorabang server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
