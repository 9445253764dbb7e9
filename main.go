package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/healthinsight/disease-insight-api/cache"
	"github.com/healthinsight/disease-insight-api/config"
	"github.com/healthinsight/disease-insight-api/gateway"
	"github.com/healthinsight/disease-insight-api/logging"
	"github.com/healthinsight/disease-insight-api/scheduler"
	"github.com/healthinsight/disease-insight-api/server"
	"github.com/healthinsight/disease-insight-api/validation"
)

func init() {
	// Read the env variables from the working directory, falling back to
	// the executable directory (systemd units start elsewhere)
	if err := godotenv.Load(); err != nil {
		ex, exErr := os.Executable()
		if exErr != nil {
			return
		}
		_ = godotenv.Load(filepath.Join(filepath.Dir(ex), ".env"))
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Covers the fatal missing-credential case: refuse to start
		// rather than run without an API key
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.InitLogger("logs", cfg.LogLevel, cfg.LogRetentionWeeks)

	ctx := context.Background()

	provider, err := gateway.NewProvider(ctx, cfg)
	if err != nil {
		logging.Error("Failed to create model provider", "error", err)
		os.Exit(1)
	}

	responseCache := cache.New(cfg.CacheSize, cfg.CacheTTL)
	analyzer := gateway.New(provider, responseCache, cfg)
	validator := validation.NewInputValidator()

	sched := scheduler.NewScheduler(responseCache)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	srv := server.NewServer(cfg, analyzer, validator, responseCache, provider)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Shutdown error", "error", err)
	}
}
