package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Somtiee/swaparc/config"
	"github.com/Somtiee/swaparc/internal/app"
	httphandlers "github.com/Somtiee/swaparc/internal/handlers/http"
	"github.com/Somtiee/swaparc/internal/lib/logger/handlers/slogpretty"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.LoadConfig()
	log := setupLogger(cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("Shutting down...")
		cancel()
	}()

	log.Info("Initializing indexer...")

	application, err := app.NewApp(ctx, log, cfg, nil)
	if err != nil {
		log.Error(fmt.Sprintf("Failed to initialize indexer: %v", err))
		os.Exit(1)
	}

	log.Info("Starting tail scanner...",
		"pool", cfg.PoolAddress, "arcscan", cfg.ArcscanAPI, "interval_ms", cfg.ScanInterval)
	handle := application.Scanner.Start(ctx)

	// Set up HTTP server
	httpAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	httpServer := httphandlers.NewServer(httpAddr, application.Leaderboard, application.Profiles,
		application.Broadcaster, cfg.LeaderboardN, cfg.MetricTopN)

	go func() {
		log.Info(fmt.Sprintf("HTTP server listening on %s", httpAddr))
		if err := httpServer.Start(); err != nil {
			log.Info(fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	// Wait for the scanner loop to wind down
	<-handle.Done()

	log.Info("Cleaning up resources...")
	application.Cleanup(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	log.Info("Shutting down HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Info(fmt.Sprintf("HTTP server shutdown error: %v", err))
	}

	log.Info("Service stopped.")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
