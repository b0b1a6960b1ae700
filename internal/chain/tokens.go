package chain

import "strings"

// USDCIndex is the pool index of the USD reference asset.
const USDCIndex = 0

// USDCDecimals is the decimal scale of the reference asset.
const USDCDecimals = 6

// Token describes one asset of the monitored pool.
type Token struct {
	Index    int
	Symbol   string
	Address  string // lowercase hex
	Decimals int
}

var poolTokens = []Token{
	{Index: 0, Symbol: "USDC", Address: "0x3600000000000000000000000000000000000000", Decimals: 6},
	{Index: 1, Symbol: "EURC", Address: "0x89b50855aa3be2f677cd6303cec089b5f319d72a", Decimals: 6},
	{Index: 2, Symbol: "SWPRC", Address: "0xbe7477bf91526fc9988c8f33e91b6db687119d45", Decimals: 18},
}

// FallbackPrices are approximate USD prices used when every other pricing
// tier has failed.
var FallbackPrices = map[string]float64{
	"USDC":  1,
	"EURC":  1.06,
	"SWPRC": 0.71,
	"USDG":  1,
	"wETH":  2500,
	"wBTC":  45000,
	"SOL":   100,
	"BTC":   45000,
	"ETH":   2500,
}

// TokenByIndex looks up a pool token by its pool index.
func TokenByIndex(i int) (Token, bool) {
	for _, t := range poolTokens {
		if t.Index == i {
			return t, true
		}
	}
	return Token{}, false
}

// TokenBySymbol looks up a pool token by symbol.
func TokenBySymbol(symbol string) (Token, bool) {
	for _, t := range poolTokens {
		if t.Symbol == symbol {
			return t, true
		}
	}
	return Token{}, false
}

// TokenByAddress looks up a pool token by its (case-insensitive) address.
func TokenByAddress(addr string) (Token, bool) {
	addr = strings.ToLower(addr)
	for _, t := range poolTokens {
		if t.Address == addr {
			return t, true
		}
	}
	return Token{}, false
}
