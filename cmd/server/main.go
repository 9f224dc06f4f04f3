package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/templui/catalog/internal/app"
	"github.com/templui/catalog/internal/config"
	"github.com/templui/catalog/internal/logger"
	"github.com/templui/catalog/internal/routes"
)

const (
	tokenPruneInterval  = time.Hour
	tokenRetention      = 24 * time.Hour
	shutdownGracePeriod = 10 * time.Second
)

func main() {
	cfg := config.Load()

	logger.Init(cfg)
	defer logger.Flush()

	app, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer func() {
		closeErr := app.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go pruneTokens(ctx, app)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRoutes(app),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "url", cfg.AppURL, "storage", cfg.StorageDriver)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		slog.Error("forced shutdown", "error", err)
		return
	}
	slog.Info("server stopped")
}

// pruneTokens periodically removes expired and revoked access tokens
func pruneTokens(ctx context.Context, app *app.App) {
	ticker := time.NewTicker(tokenPruneInterval)
	defer ticker.Stop()

	for {
		_, err := app.AuthService.PruneTokens(tokenRetention)
		if err != nil {
			slog.Error("token pruning failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
