// Package pricing resolves tokens to USD unit prices through a tiered
// fallback chain. The oracle is total: every tier failure demotes to the next
// tier, and an entirely unknown token prices at 0.
package pricing

import (
	"context"
	"log/slog"
	"math"
	"math/big"

	"github.com/Somtiee/swaparc/internal/chain"
)

// Quoter issues read-only on-chain quotes against the USD reference asset.
type Quoter interface {
	QuoteUSDC(ctx context.Context, tokenInIndex int, amountIn *big.Int) (*big.Int, error)
}

// Feed is an external spot price source keyed by symbol.
type Feed interface {
	Price(ctx context.Context, symbol string) (float64, error)
}

// Oracle returns USD unit prices for token symbols. Both collaborators are
// optional; a nil quoter or feed simply skips that tier.
type Oracle struct {
	quoter Quoter
	feed   Feed
	log    *slog.Logger
}

func NewOracle(quoter Quoter, feed Feed, log *slog.Logger) *Oracle {
	return &Oracle{quoter: quoter, feed: feed, log: log}
}

// PriceUSDC returns the USD price of one unit of the token. Never fails:
// tiers are reference asset, on-chain quote, external feed, static table, 0.
func (o *Oracle) PriceUSDC(ctx context.Context, symbol string) float64 {
	if tok, ok := chain.TokenBySymbol(symbol); ok {
		if tok.Index == chain.USDCIndex {
			return 1.0
		}
		if o.quoter != nil {
			dy, err := o.quoter.QuoteUSDC(ctx, tok.Index, chain.OneUnit(tok.Decimals))
			if err == nil {
				if p := chain.FormatUnits(dy, chain.USDCDecimals); p > 0 && !math.IsInf(p, 0) {
					return p
				}
			} else {
				o.log.Debug("on-chain quote failed, trying price feed", "symbol", symbol, "err", err)
			}
		}
	}

	if o.feed != nil {
		p, err := o.feed.Price(ctx, symbol)
		if err == nil && p > 0 {
			return p
		}
		if err != nil {
			o.log.Debug("price feed lookup failed, using fallback table", "symbol", symbol, "err", err)
		}
	}

	return chain.FallbackPrices[symbol]
}
