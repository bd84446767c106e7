package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/inkpost-be/internal/api"
	"github.com/isdelr/inkpost-be/internal/auth"
	"github.com/isdelr/inkpost-be/internal/config"
	"github.com/isdelr/inkpost-be/internal/database"
	"github.com/isdelr/inkpost-be/internal/logger"
	"github.com/isdelr/inkpost-be/internal/media"
	"github.com/isdelr/inkpost-be/internal/repository"
	"github.com/isdelr/inkpost-be/internal/services"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.LogLevel, !cfg.IsProduction())

	if err := os.MkdirAll(cfg.UploadTempDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadTempDir).Msg("Failed to create upload temp directory")
	}

	ctx := context.Background()

	// Set up database
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up object storage for covers
	store, err := media.NewS3Store(ctx, cfg.S3)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize media store")
	}

	// Set up services
	tokens := auth.NewTokenService(cfg.JWTSecret)
	eventService := services.NewEventService(db)
	userService := services.NewUserService(repository.NewUserRepository(db), tokens)
	postService := services.NewPostService(repository.NewPostRepository(db), store, eventService)

	// Set up router
	router := api.NewRouter(api.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookies:  cfg.IsProduction(),
		UploadTempDir:  cfg.UploadTempDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, api.Services{
		Users:  userService,
		Posts:  postService,
		Events: eventService,
		Tokens: tokens,
		DB:     db,
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       time.Minute,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.Env).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
