package chain

import (
	"math"
	"math/big"
)

// FormatUnits converts a raw token amount to a float scaled by the token's
// decimals. Returns 0 for nil input.
func FormatUnits(amount *big.Int, decimals int) float64 {
	if amount == nil {
		return 0
	}
	f := new(big.Float).SetInt(amount)
	scale := new(big.Float).SetFloat64(math.Pow10(decimals))
	v, _ := new(big.Float).Quo(f, scale).Float64()
	return v
}

// OneUnit returns 10^decimals as a raw amount.
func OneUnit(decimals int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}
