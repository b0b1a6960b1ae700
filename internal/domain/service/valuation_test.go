package service_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/Somtiee/swaparc/internal/domain/model"
	"github.com/Somtiee/swaparc/internal/domain/service"
)

func TestValueUSDReferenceAssetInput(t *testing.T) {
	quoter := &fakeSwapQuoter{err: errors.New("should not be called")}
	valuer := service.NewValuer(quoter, &fakePriceOracle{}, discardLogger())

	// 100 USDC in, 6 decimals
	swap := &model.SwapEvent{TokenInIndex: 0, TokenOutIndex: 2, AmountIn: big.NewInt(100_000_000)}
	if got := valuer.ValueUSD(context.Background(), swap); got != 100.0 {
		t.Errorf("expected 100.0, got %f", got)
	}
	if quoter.calls != 0 {
		t.Errorf("reference-asset input must not hit the quoter, got %d calls", quoter.calls)
	}
}

func TestValueUSDReferenceAssetOutput(t *testing.T) {
	quoter := &fakeSwapQuoter{err: errors.New("should not be called")}
	valuer := service.NewValuer(quoter, &fakePriceOracle{}, discardLogger())

	swap := &model.SwapEvent{
		TokenInIndex:  2,
		TokenOutIndex: 0,
		AmountIn:      big.NewInt(1),
		AmountOut:     big.NewInt(55_250_000),
	}
	if got := valuer.ValueUSD(context.Background(), swap); got != 55.25 {
		t.Errorf("expected 55.25 from output amount, got %f", got)
	}
}

func TestValueUSDOnChainQuote(t *testing.T) {
	quoter := &fakeSwapQuoter{dy: big.NewInt(42_500_000)}
	valuer := service.NewValuer(quoter, &fakePriceOracle{}, discardLogger())

	swap := &model.SwapEvent{
		TokenInIndex:  2,
		TokenOutIndex: 1,
		AmountIn:      new(big.Int).Mul(big.NewInt(50), big.NewInt(1e18)),
	}
	if got := valuer.ValueUSD(context.Background(), swap); got != 42.5 {
		t.Errorf("expected 42.5 from quote, got %f", got)
	}
	if quoter.calls != 1 {
		t.Errorf("expected one quote call, got %d", quoter.calls)
	}
}

func TestValueUSDOracleFallback(t *testing.T) {
	quoter := &fakeSwapQuoter{err: errors.New("execution reverted")}
	oracle := &fakePriceOracle{prices: map[string]float64{"SWPRC": 0.71}}
	valuer := service.NewValuer(quoter, oracle, discardLogger())

	// 50 SWPRC at 18 decimals, priced at 0.71
	swap := &model.SwapEvent{
		TokenInIndex:  2,
		TokenOutIndex: 1,
		AmountIn:      new(big.Int).Mul(big.NewInt(50), big.NewInt(1e18)),
	}
	got := valuer.ValueUSD(context.Background(), swap)
	if got < 35.49 || got > 35.51 {
		t.Errorf("expected ~35.5 from oracle pricing, got %f", got)
	}
}

func TestValueUSDUnknownTokenIndex(t *testing.T) {
	quoter := &fakeSwapQuoter{err: errors.New("execution reverted")}
	valuer := service.NewValuer(quoter, &fakePriceOracle{}, discardLogger())

	swap := &model.SwapEvent{TokenInIndex: 9, TokenOutIndex: 1, AmountIn: big.NewInt(1)}
	if got := valuer.ValueUSD(context.Background(), swap); got != 0 {
		t.Errorf("expected 0 for unknown token index, got %f", got)
	}
}

func TestValueUSDNeverNegativeOrNil(t *testing.T) {
	valuer := service.NewValuer(nil, &fakePriceOracle{}, discardLogger())

	cases := []*model.SwapEvent{
		nil,
		{TokenInIndex: 0, AmountIn: nil},
		{TokenInIndex: 2, TokenOutIndex: 1, AmountIn: big.NewInt(-5)},
	}
	for i, swap := range cases {
		if got := valuer.ValueUSD(context.Background(), swap); got < 0 {
			t.Errorf("case %d: expected non-negative value, got %f", i, got)
		}
	}
}
