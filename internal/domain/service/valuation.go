// Package service provides implementations of domain services that implement core business logic
// This package depends only on domain models and repository interfaces (not implementations)
package service

import (
	"context"
	"log/slog"
	"math"
	"math/big"

	"github.com/Somtiee/swaparc/internal/chain"
	"github.com/Somtiee/swaparc/internal/domain/model"
)

// Quoter issues read-only on-chain quotes against the USD reference asset.
type Quoter interface {
	QuoteUSDC(ctx context.Context, tokenInIndex int, amountIn *big.Int) (*big.Int, error)
}

// PriceOracle returns a USD unit price for a token symbol. Total by contract.
type PriceOracle interface {
	PriceUSDC(ctx context.Context, symbol string) float64
}

// Valuer computes the USD value of decoded swaps. It is total: a swap whose
// valuation fails at every tier values at 0 but is still counted.
type Valuer struct {
	quoter Quoter
	oracle PriceOracle
	log    *slog.Logger
}

func NewValuer(quoter Quoter, oracle PriceOracle, log *slog.Logger) *Valuer {
	return &Valuer{quoter: quoter, oracle: oracle, log: log}
}

// ValueUSD resolves the swap's USD value with the cheapest reliable method:
// reference-asset pass-through on either side, then an on-chain quote of the
// input amount, then oracle tier pricing. The result is finite and >= 0.
func (v *Valuer) ValueUSD(ctx context.Context, swap *model.SwapEvent) float64 {
	usd := v.resolve(ctx, swap)
	if math.IsNaN(usd) || math.IsInf(usd, 0) || usd < 0 {
		return 0
	}
	return usd
}

func (v *Valuer) resolve(ctx context.Context, swap *model.SwapEvent) float64 {
	if swap == nil || swap.AmountIn == nil {
		return 0
	}

	if swap.TokenInIndex == chain.USDCIndex {
		return chain.FormatUnits(swap.AmountIn, chain.USDCDecimals)
	}

	// Output-side pass-through needs an output amount, which only event-log
	// sources report.
	if swap.TokenOutIndex == chain.USDCIndex && swap.AmountOut != nil {
		return chain.FormatUnits(swap.AmountOut, chain.USDCDecimals)
	}

	if v.quoter != nil {
		dy, err := v.quoter.QuoteUSDC(ctx, swap.TokenInIndex, swap.AmountIn)
		if err == nil {
			return chain.FormatUnits(dy, chain.USDCDecimals)
		}
		v.log.Debug("on-chain quote failed, falling back to oracle pricing",
			"tx", swap.TxHash, "tokenIn", swap.TokenInIndex, "err", err)
	}

	tok, ok := chain.TokenByIndex(swap.TokenInIndex)
	if !ok {
		return 0
	}
	amount := chain.FormatUnits(swap.AmountIn, tok.Decimals)
	return amount * v.oracle.PriceUSDC(ctx, tok.Symbol)
}
