package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/martinmanurung/cinecatalog/internal/platform/config"
	"github.com/martinmanurung/cinecatalog/pkg/logger"
	zlog "github.com/rs/zerolog/log"
)

func main() {
	// Console logging until the configured level and file are known
	if _, err := logger.Setup(logger.Options{}); err != nil {
		zlog.Fatal().Err(err).Msg("Failed to set up logger")
	}

	zlog.Info().Msg("Starting movie catalog API server...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to load config")
	}

	closeLog, err := logger.Setup(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to set up logger")
	}
	defer closeLog()

	ctx := context.Background()

	application, err := newApp(ctx, cfg)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize application")
	}

	// Start server in goroutine
	go func() {
		port := cfg.Server.Port
		if port == "" {
			port = "8080"
		}

		zlog.Info().Str("port", port).Msg("Starting HTTP server")
		if err := application.echo.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error().Err(err).Msg("Server stopped")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	zlog.Info().Msg("Shutting down server...")

	timeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := application.echo.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("Server forced to shutdown")
	}

	if err := application.Close(); err != nil {
		zlog.Error().Err(err).Msg("Failed to release resources")
	}

	zlog.Info().Msg("Server exited successfully")
}
