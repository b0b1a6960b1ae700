package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/Somtiee/swaparc/internal/domain/model"
	"github.com/Somtiee/swaparc/internal/domain/repository"
)

const scanPageSize = 100

// LeaderboardService materializes ranked leaderboards by scanning all stored
// profiles. O(total profiles) per call, which is fine at single-pool testnet
// scale; the sorted sets exist for when that stops being true.
type LeaderboardService struct {
	store repository.ProfileStore
}

func NewLeaderboardService(store repository.ProfileStore) *LeaderboardService {
	return &LeaderboardService{store: store}
}

// TopN returns the top n profiles by the metric, projected to public fields.
func (s *LeaderboardService) TopN(ctx context.Context, metric model.Metric, n int) ([]model.LeaderboardEntry, error) {
	profiles, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	top := rank(profiles, metric, n)

	entries := make([]model.LeaderboardEntry, len(top))
	for i, p := range top {
		entries[i] = model.LeaderboardEntry{
			Username:   p.Username,
			Avatar:     p.Avatar,
			SwapVolume: p.SwapVolume,
			Badges:     p.Badges,
		}
	}
	return entries, nil
}

// TopByMetric returns the top n profiles by the metric with all ranking stats
// exposed.
func (s *LeaderboardService) TopByMetric(ctx context.Context, metric model.Metric, n int) ([]model.RankedProfile, error) {
	profiles, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	top := rank(profiles, metric, n)

	entries := make([]model.RankedProfile, len(top))
	for i, p := range top {
		entries[i] = model.RankedProfile{
			UserID:     p.ID,
			SwapVolume: p.SwapVolume,
			SwapCount:  p.SwapCount,
			LpProvided: p.LpProvided,
		}
	}
	return entries, nil
}

func (s *LeaderboardService) loadAll(ctx context.Context) ([]*model.Profile, error) {
	var all []*model.Profile
	var cursor uint64
	for {
		next, page, err := s.store.ScanProfiles(ctx, cursor, scanPageSize)
		if err != nil {
			return nil, fmt.Errorf("scan profiles: %w", err)
		}
		all = append(all, page...)
		if next == 0 {
			return all, nil
		}
		cursor = next
	}
}

// rank sorts descending by the metric, ties broken by ascending profile id so
// results are deterministic, and truncates to n.
func rank(profiles []*model.Profile, metric model.Metric, n int) []*model.Profile {
	sorted := make([]*model.Profile, len(profiles))
	copy(sorted, profiles)

	sort.Slice(sorted, func(i, j int) bool {
		vi, vj := metric.Value(sorted[i]), metric.Value(sorted[j])
		if vi != vj {
			return vi > vj
		}
		return sorted[i].ID < sorted[j].ID
	})

	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
