package utils

import (
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"

	"github.com/Somtiee/swaparc/internal/arcscan"
	"github.com/Somtiee/swaparc/internal/chain"
)

// SwapTxGenerator builds explorer-shaped transactions with real encoded call
// data, for tests and local demos.
type SwapTxGenerator struct {
	pool string
}

func NewSwapTxGenerator(pool string) *SwapTxGenerator {
	return &SwapTxGenerator{pool: pool}
}

// SwapTx returns a transaction carrying a valid swap(i, j, dx) call.
func (g *SwapTxGenerator) SwapTx(from string, i, j int, dx *big.Int, block uint64) arcscan.Transaction {
	input, err := chain.PackSwap(i, j, dx)
	if err != nil {
		panic(err) // static ABI, cannot fail for valid indices
	}
	return arcscan.Transaction{
		Hash:        fakeTxHash(),
		From:        from,
		To:          g.pool,
		Input:       hexutil.Encode(input),
		BlockNumber: strconv.FormatUint(block, 10),
		TimeStamp:   strconv.FormatInt(time.Now().Unix(), 10),
	}
}

// PlainTx returns a transaction with empty call data (a plain transfer).
func (g *SwapTxGenerator) PlainTx(from string, block uint64) arcscan.Transaction {
	return arcscan.Transaction{
		Hash:        fakeTxHash(),
		From:        from,
		To:          g.pool,
		Input:       "0x",
		BlockNumber: strconv.FormatUint(block, 10),
		TimeStamp:   strconv.FormatInt(time.Now().Unix(), 10),
	}
}

func fakeTxHash() string {
	a, b := uuid.New(), uuid.New()
	return fmt.Sprintf("0x%x%x", a[:], b[:])
}
