package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Somtiee/swaparc/internal/domain/model"
	"github.com/Somtiee/swaparc/internal/domain/repository"
)

// AggregateWriter applies per-wallet deltas to the store with atomic
// increments, so concurrent writers (a live tailer and a backfill job) do not
// lose updates, and keeps the leaderboard sorted sets in step.
type AggregateWriter struct {
	store repository.ProfileStore
	log   *slog.Logger
}

func NewAggregateWriter(store repository.ProfileStore, log *slog.Logger) *AggregateWriter {
	return &AggregateWriter{store: store, log: log}
}

// ApplyDelta increments the wallet's swap count and volume and upserts its
// leaderboard scores, returning the new totals. The wallet address is
// canonicalized through the wallet mapping first. Sorted-set upserts are a
// denormalized read optimization; their failure is logged, not returned.
func (w *AggregateWriter) ApplyDelta(ctx context.Context, wallet string, countDelta int64, volumeDelta float64) (int64, float64, error) {
	id, err := w.store.ResolveWalletID(ctx, wallet)
	if err != nil {
		return 0, 0, fmt.Errorf("resolve wallet %s: %w", wallet, err)
	}

	newCount, newVolume, err := w.store.IncrementSwapStats(ctx, id, countDelta, volumeDelta)
	if err != nil {
		return 0, 0, fmt.Errorf("increment stats for %s: %w", id, err)
	}

	if err := w.store.SetLeaderboardScore(ctx, model.MetricSwapVolume, id, newVolume); err != nil {
		w.log.Warn("failed to upsert volume leaderboard score", "wallet", id, "err", err)
	}
	if err := w.store.SetLeaderboardScore(ctx, model.MetricSwapCount, id, float64(newCount)); err != nil {
		w.log.Warn("failed to upsert count leaderboard score", "wallet", id, "err", err)
	}

	return newCount, newVolume, nil
}
