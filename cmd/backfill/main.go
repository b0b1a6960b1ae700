// Backfill runs a single bounded catch-up pass of the tail scanner: scan from
// the stored checkpoint (or from genesis with START_FROM_ZERO=true), flush
// everything found, persist the checkpoint, and exit.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Somtiee/swaparc/config"
	"github.com/Somtiee/swaparc/internal/app"
)

func main() {
	cfg := config.LoadConfig()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("Interrupted, stopping backfill...")
		cancel()
	}()

	var startOverride *uint64
	if cfg.StartFromZero {
		zero := uint64(0)
		startOverride = &zero
	}

	application, err := app.NewApp(ctx, log, cfg, startOverride)
	if err != nil {
		log.Error(fmt.Sprintf("Failed to initialize backfill: %v", err))
		os.Exit(1)
	}
	defer application.Cleanup(context.Background())

	if err := application.Scanner.RunOnce(ctx); err != nil {
		log.Error(fmt.Sprintf("Backfill failed: %v", err))
		os.Exit(1)
	}
}
