package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Somtiee/swaparc/internal/domain/model"
	"github.com/Somtiee/swaparc/internal/domain/repository"
	"github.com/Somtiee/swaparc/internal/domain/useCases"
)

// ProfileService handles profile reads and the identity/LP writes that come
// from outside the indexer. Stat fields always come from the store, never
// from the caller, so a stale client cannot roll back indexed totals.
type ProfileService struct {
	store repository.ProfileStore
}

func NewProfileService(store repository.ProfileStore) *ProfileService {
	return &ProfileService{store: store}
}

var _ useCases.Profiles = (*ProfileService)(nil)

// Get loads a profile by user id. Wallet addresses are lowercased and, when
// no wallet-keyed profile exists, resolved through the legacy id mapping.
// Returns nil without error when nothing is found.
func (s *ProfileService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("missing userId")
	}

	id := userID
	if strings.HasPrefix(userID, "0x") {
		id = strings.ToLower(userID)
		p, err := s.store.GetProfile(ctx, id)
		if err != nil {
			return nil, err
		}
		if p != nil {
			return p, nil
		}
		mapped, err := s.store.ResolveWalletID(ctx, id)
		if err != nil {
			return nil, err
		}
		id = mapped
	}

	return s.store.GetProfile(ctx, id)
}

// Save upserts the client-settable identity fields, keeps all numeric stats
// from the store, re-evaluates badges, and refreshes the leaderboard scores
// for any non-zero metric.
func (s *ProfileService) Save(ctx context.Context, req *useCases.SaveProfileRequest) (*model.Profile, error) {
	if req == nil || req.UserID == "" {
		return nil, fmt.Errorf("missing userId")
	}

	id := req.UserID
	if strings.HasPrefix(id, "0x") {
		id = strings.ToLower(id)
	}

	existing, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		existing = &model.Profile{ID: id, CreatedAt: time.Now().UTC()}
	}

	p := *existing
	if req.Username != "" {
		p.Username = req.Username
	}
	if req.WalletID != "" {
		p.WalletID = req.WalletID
	}
	if req.Avatar != "" {
		p.Avatar = req.Avatar
	}
	if req.WalletAddress != "" {
		p.WalletAddress = req.WalletAddress
		if err := s.store.SetWalletMapping(ctx, strings.ToLower(req.WalletAddress), id); err != nil {
			return nil, fmt.Errorf("save wallet mapping: %w", err)
		}
	}
	p.Badges = model.EvaluateBadges(existing.Badges, p.SwapCount, p.SwapVolume, p.LpProvided)

	if err := s.store.SaveProfile(ctx, &p); err != nil {
		return nil, err
	}

	if p.SwapVolume > 0 {
		if err := s.store.SetLeaderboardScore(ctx, model.MetricSwapVolume, id, p.SwapVolume); err != nil {
			return nil, err
		}
	}
	if p.SwapCount > 0 {
		if err := s.store.SetLeaderboardScore(ctx, model.MetricSwapCount, id, float64(p.SwapCount)); err != nil {
			return nil, err
		}
	}
	if p.LpProvided > 0 {
		if err := s.store.SetLeaderboardScore(ctx, model.MetricLpProvided, id, p.LpProvided); err != nil {
			return nil, err
		}
	}

	return &p, nil
}

// UpdateLp sets the wallet's latest liquidity-provided USD value (an
// externally computed number), re-evaluates badges, and upserts the LP
// leaderboard score.
func (s *ProfileService) UpdateLp(ctx context.Context, userID string, lpTotalValue float64) (*model.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("missing userId")
	}

	id := userID
	if strings.HasPrefix(id, "0x") {
		id = strings.ToLower(id)
	}

	existing, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		existing = &model.Profile{ID: id, CreatedAt: time.Now().UTC()}
	}

	p := *existing
	p.LpProvided = lpTotalValue
	p.Badges = model.EvaluateBadges(existing.Badges, p.SwapCount, p.SwapVolume, p.LpProvided)

	if err := s.store.SaveProfile(ctx, &p); err != nil {
		return nil, err
	}
	if err := s.store.SetLeaderboardScore(ctx, model.MetricLpProvided, id, lpTotalValue); err != nil {
		return nil, err
	}
	return &p, nil
}
