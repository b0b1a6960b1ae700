package model

import (
	"math/big"
	"time"
)

// SwapCall is a decoded pool swap(i, j, dx) call.
type SwapCall struct {
	TokenInIndex  int
	TokenOutIndex int
	AmountIn      *big.Int
}

// SwapEvent is one priced swap observed on chain. It lives only within a scan
// pass (and, optionally, in the archive/event feed afterwards).
type SwapEvent struct {
	TxHash        string    `json:"txHash"`
	Trader        string    `json:"trader"`
	TokenInIndex  int       `json:"tokenInIndex"`
	TokenOutIndex int       `json:"tokenOutIndex"`
	AmountIn      *big.Int  `json:"amountIn"`
	AmountOut     *big.Int  `json:"amountOut,omitempty"` // only known for event-log sources
	USD           float64   `json:"usd"`
	BlockNumber   uint64    `json:"blockNumber"`
	Timestamp     time.Time `json:"timestamp"`
}

// WalletDelta accumulates a wallet's stats within a single scan pass so the
// store is written once per wallet, not once per transaction.
type WalletDelta struct {
	Count  int64
	Volume float64
}

// AggregateUpdate is a post-flush snapshot of a wallet's totals, pushed to
// websocket subscribers.
type AggregateUpdate struct {
	Wallet     string  `json:"wallet"`
	SwapCount  int64   `json:"swapCount"`
	SwapVolume float64 `json:"swapVolume"`
}
