package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"sort"
	"strings"

	"github.com/Somtiee/swaparc/internal/domain/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeProfileStore is an in-memory repository.ProfileStore. Scan pages one
// profile at a time so cursor handling gets exercised.
type fakeProfileStore struct {
	profiles map[string]*model.Profile
	mappings map[string]string
	scores   map[model.Metric]map[string]float64

	incrementErr error
	zaddErr      error
	scanErr      error
	zaddCalls    int
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{
		profiles: make(map[string]*model.Profile),
		mappings: make(map[string]string),
		scores:   make(map[model.Metric]map[string]float64),
	}
}

func (s *fakeProfileStore) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *fakeProfileStore) SaveProfile(ctx context.Context, p *model.Profile) error {
	cp := *p
	s.profiles[p.ID] = &cp
	return nil
}

func (s *fakeProfileStore) IncrementSwapStats(ctx context.Context, id string, countDelta int64, volumeDelta float64) (int64, float64, error) {
	if s.incrementErr != nil {
		return 0, 0, s.incrementErr
	}
	p, ok := s.profiles[id]
	if !ok {
		p = &model.Profile{ID: id}
		s.profiles[id] = p
	}
	p.SwapCount += countDelta
	p.SwapVolume += volumeDelta
	return p.SwapCount, p.SwapVolume, nil
}

func (s *fakeProfileStore) SetLeaderboardScore(ctx context.Context, metric model.Metric, id string, score float64) error {
	s.zaddCalls++
	if s.zaddErr != nil {
		return s.zaddErr
	}
	if s.scores[metric] == nil {
		s.scores[metric] = make(map[string]float64)
	}
	s.scores[metric][id] = score
	return nil
}

func (s *fakeProfileStore) ScanProfiles(ctx context.Context, cursor uint64, count int64) (uint64, []*model.Profile, error) {
	if s.scanErr != nil {
		return 0, nil, s.scanErr
	}
	ids := make([]string, 0, len(s.profiles))
	for id := range s.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if cursor >= uint64(len(ids)) {
		return 0, nil, nil
	}
	p := s.profiles[ids[cursor]]
	cp := *p
	next := cursor + 1
	if next >= uint64(len(ids)) {
		next = 0
	}
	return next, []*model.Profile{&cp}, nil
}

func (s *fakeProfileStore) ResolveWalletID(ctx context.Context, walletAddress string) (string, error) {
	lower := strings.ToLower(walletAddress)
	if id, ok := s.mappings[lower]; ok {
		return id, nil
	}
	return lower, nil
}

func (s *fakeProfileStore) SetWalletMapping(ctx context.Context, walletAddress, id string) error {
	s.mappings[strings.ToLower(walletAddress)] = id
	return nil
}

// fakeSwapQuoter answers on-chain quote calls with a fixed dy or error.
type fakeSwapQuoter struct {
	dy    *big.Int
	err   error
	calls int
}

func (q *fakeSwapQuoter) QuoteUSDC(ctx context.Context, tokenInIndex int, amountIn *big.Int) (*big.Int, error) {
	q.calls++
	if q.err != nil {
		return nil, q.err
	}
	return q.dy, nil
}

// fakePriceOracle returns a per-symbol unit price, 0 for unknown symbols.
type fakePriceOracle struct {
	prices map[string]float64
}

func (o *fakePriceOracle) PriceUSDC(ctx context.Context, symbol string) float64 {
	return o.prices[symbol]
}

var errStoreDown = errors.New("store unavailable")
