// Package arcscan talks to the block-explorer transaction API: paged,
// ascending transaction listings for one address.
package arcscan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

const endBlock = 999999999

// Transaction is one row of a txlist response. Numeric fields arrive as
// base-10 strings.
type Transaction struct {
	Hash        string `json:"hash"`
	From        string `json:"from"`
	To          string `json:"to"`
	Input       string `json:"input"`
	BlockNumber string `json:"blockNumber"`
	TimeStamp   string `json:"timeStamp"`
}

// Block parses the transaction's block number; 0 when malformed.
func (t Transaction) Block() uint64 {
	n, err := strconv.ParseUint(t.BlockNumber, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Time parses the transaction's unix timestamp.
func (t Transaction) Time() time.Time {
	s, err := strconv.ParseInt(t.TimeStamp, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(s, 0).UTC()
}

// InputBytes returns the decoded call data, or nil for empty/absent/"0x"
// input.
func (t Transaction) InputBytes() []byte {
	if t.Input == "" || t.Input == "0x" {
		return nil
	}
	data, err := hexutil.Decode(t.Input)
	if err != nil {
		return nil
	}
	return data
}

type txListResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Result  []Transaction `json:"result"`
}

// Client fetches transaction pages from the explorer API.
type Client struct {
	baseURL string
	address string
	http    *http.Client
}

func NewClient(baseURL, address string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		address: address,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchPage requests one page of transactions for the monitored address
// starting at startBlock, sorted ascending. An empty slice means the explorer
// has no more data from that start block.
func (c *Client) FetchPage(ctx context.Context, startBlock uint64) ([]Transaction, error) {
	url := fmt.Sprintf("%s?module=account&action=txlist&address=%s&startblock=%d&endblock=%d&sort=asc",
		c.baseURL, c.address, startBlock, endBlock)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("txlist request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("txlist request: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("txlist read: %w", err)
	}

	var data txListResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("txlist decode: %w", err)
	}

	// status "0" with "No transactions found" is the explorer's empty page
	if data.Status != "1" || len(data.Result) == 0 {
		return nil, nil
	}
	return data.Result, nil
}
