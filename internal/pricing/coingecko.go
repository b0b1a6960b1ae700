package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// symbolToCoinGeckoID maps our token symbols to CoinGecko ids. Unmapped
// symbols (pool-local assets like SWPRC) cannot be priced by the feed.
var symbolToCoinGeckoID = map[string]string{
	"USDC": "usd-coin",
	"EURC": "eurc",
	"USDG": "global-dollar",
	"wETH": "weth",
	"wBTC": "wrapped-bitcoin",
	"SOL":  "solana",
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
}

// CoinGeckoClient fetches USD spot prices from the CoinGecko simple price API.
type CoinGeckoClient struct {
	baseURL string
	http    *http.Client
}

func NewCoinGeckoClient() *CoinGeckoClient {
	return NewCoinGeckoClientWithBase("https://api.coingecko.com/api/v3")
}

func NewCoinGeckoClientWithBase(baseURL string) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Price returns the USD price for a symbol, or an error when the symbol is
// unmapped, the request fails, or the feed has no quote.
func (c *CoinGeckoClient) Price(ctx context.Context, symbol string) (float64, error) {
	id, ok := symbolToCoinGeckoID[symbol]
	if id == "" || !ok {
		return 0, fmt.Errorf("no price feed id for symbol %q", symbol)
	}

	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("price feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("price feed request: unexpected status %d", resp.StatusCode)
	}

	var data map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, fmt.Errorf("price feed decode: %w", err)
	}

	price, ok := data[id]["usd"]
	if !ok {
		return 0, fmt.Errorf("price feed has no usd quote for %q", id)
	}
	return price, nil
}
